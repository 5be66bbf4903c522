// Package socket is the realtime surface: drivers stream GPS positions in,
// riders get ride updates and navigation state out, keyed by ride rooms.
package socket

import (
	"context"
	"net/http"

	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"

	"nextride/models"
	"nextride/nav"
	"nextride/ride"
	"nextride/stores"
	"nextride/utils"
)

// Deps is everything the realtime layer needs from the rest of the system.
type Deps struct {
	Rides   *ride.Service
	Drivers *stores.DriverStore
	Feed    *stores.RideFeed
	Nav     *nav.Manager
}

func rideRoom(rideID string) socketio.Room {
	return socketio.Room("ride:" + rideID)
}

// openRidesRoom is where online drivers wait for new requests.
const openRidesRoom = socketio.Room("drivers:open")

// InitSocketIO creates the Socket.IO server (compatible with
// socket.io-client v4) and wires its events.
func InitSocketIO(deps Deps) *socketio.Server {
	opts := &socketio.ServerOptions{}
	opts.SetCors(&types.Cors{
		Origin: "*",
	})

	io := socketio.NewServer(nil, opts)
	roster := newRoomRoster()

	// Every new request broadcast on the shared Redis channel reaches the
	// open-rides room, regardless of which API instance booked it.
	deps.Feed.SubscribeRequested(func(r *models.Ride) {
		io.To(openRidesRoom).Emit("rideRequested", r)
	})

	io.On("connection", func(clients ...any) {
		socket := clients[0].(*socketio.Socket)
		utils.Logger.Info("Socket connected", zap.String("socketID", string(socket.Id())))

		// joinRideRoom: both parties of a ride join to receive updates.
		// The ride's first watcher bridges its Redis feed into the room, so
		// updates committed on any API instance reach this socket. The feed
		// is torn down when the last watcher leaves or the ride goes
		// terminal, whichever comes first.
		socket.On("joinRideRoom", func(args ...any) {
			data, ok := eventData(args)
			if !ok {
				return
			}
			rideID, _ := data["rideId"].(string)
			if rideID == "" {
				return
			}

			socket.Join(rideRoom(rideID))
			if !roster.join(string(socket.Id()), rideID) {
				return
			}
			deps.Feed.Subscribe(rideID, func(r *models.Ride) {
				io.To(rideRoom(rideID)).Emit("rideUpdate", r)
				if r.Status.Terminal() {
					// Nothing publishes after a terminal status.
					deps.Feed.Unsubscribe(rideID)
					deps.Nav.Stop(rideID)
					roster.release(rideID)
				}
			})
		})

		socket.On("leaveRideRoom", func(args ...any) {
			data, ok := eventData(args)
			if !ok {
				return
			}
			if rideID, _ := data["rideId"].(string); rideID != "" {
				socket.Leave(rideRoom(rideID))
				if roster.leave(string(socket.Id()), rideID) {
					deps.Feed.Unsubscribe(rideID)
				}
			}
		})

		// watchOpenRides: an online driver opts into the new-request feed.
		socket.On("watchOpenRides", func(args ...any) {
			socket.Join(openRidesRoom)
		})

		socket.On("unwatchOpenRides", func(args ...any) {
			socket.Leave(openRidesRoom)
		})

		// locationUpdate: driver streams GPS positions. Each sample
		// refreshes dispatch presence; during an active ride it also lands
		// on the ride row and drives the navigation session.
		socket.On("locationUpdate", func(args ...any) {
			data, ok := eventData(args)
			if !ok {
				return
			}

			driverID, _ := data["driverId"].(string)
			if driverID == "" {
				return
			}
			lat, _ := data["latitude"].(float64)
			lng, _ := data["longitude"].(float64)
			name, _ := data["name"].(string)
			vehicleType, _ := data["vehicleType"].(string)
			pos := models.Coordinates{Latitude: lat, Longitude: lng}

			err := deps.Drivers.SetOnline(context.Background(), stores.DriverPresence{
				DriverID:    driverID,
				Name:        name,
				VehicleType: models.VehicleType(vehicleType),
				SocketID:    string(socket.Id()),
				Latitude:    lat,
				Longitude:   lng,
			})
			if err != nil {
				utils.Logger.Error("Error updating driver presence", zap.Error(err))
			}

			rideID, _ := data["rideId"].(string)
			if rideID == "" {
				return
			}

			if err := deps.Rides.RecordDriverPosition(context.Background(), rideID, pos); err != nil {
				utils.Logger.Warn("Error recording driver position",
					zap.String("rideId", rideID), zap.Error(err))
			}

			if tracker := deps.Nav.Get(rideID); tracker != nil {
				update := tracker.Feed(pos)
				io.To(rideRoom(rideID)).Emit("navUpdate", update.State)
				if update.Arrived {
					// The driver app shows an arrival prompt; advancing the
					// ride stays an explicit driver action.
					io.To(rideRoom(rideID)).Emit("arrivalPrompt", map[string]any{
						"rideId": rideID,
					})
				}
			}
		})

		// goOffline: driver leaves the dispatch pool explicitly.
		socket.On("goOffline", func(args ...any) {
			data, ok := eventData(args)
			if !ok {
				return
			}
			socket.Leave(openRidesRoom)
			if driverID, _ := data["driverId"].(string); driverID != "" {
				if err := deps.Drivers.SetOffline(context.Background(), driverID); err != nil {
					utils.Logger.Error("Error removing driver presence", zap.Error(err))
				}
			}
		})

		socket.On("disconnect", func(args ...any) {
			utils.Logger.Info("Socket disconnected", zap.String("socketID", string(socket.Id())))
			for _, rideID := range roster.drop(string(socket.Id())) {
				deps.Feed.Unsubscribe(rideID)
			}
			// Presence expires via TTL; an explicit goOffline clears it sooner.
		})
	})

	return io
}

func eventData(args []any) (map[string]any, bool) {
	if len(args) == 0 {
		return nil, false
	}
	data, ok := args[0].(map[string]any)
	return data, ok
}

// GetHandler returns the HTTP handler for Socket.IO.
func GetHandler(io *socketio.Server) http.Handler {
	return io.ServeHandler(nil)
}
