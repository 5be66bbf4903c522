package utils

import (
	"fmt"
	"net/smtp"
	"os"

	"nextride/models"
)

func SendEmail(to []string, subject, body string) error {
	from := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASS")
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, host)

	headers := "MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		fmt.Sprintf("From: NextRide <%s>\r\n", from) +
		fmt.Sprintf("To: %s\r\n", to[0]) +
		fmt.Sprintf("Subject: %s\r\n\r\n", subject)

	msg := []byte(headers + body)

	addr := fmt.Sprintf("%s:%s", host, port)

	if err := smtp.SendMail(addr, auth, from, to, msg); err != nil {
		return err
	}
	return nil
}

// SendRideReceipt emails the customer a trip receipt after dropoff.
func SendRideReceipt(to string, r *models.Ride) error {
	if to == "" {
		return nil
	}

	driver := "your driver"
	if r.DriverName != nil && *r.DriverName != "" {
		driver = *r.DriverName
	}

	body := fmt.Sprintf(`
		<h2>Thanks for riding with NextRide!</h2>
		<p><b>From:</b> %s</p>
		<p><b>To:</b> %s</p>
		<p><b>Driver:</b> %s</p>
		<p><b>Vehicle:</b> %s</p>
		<p><b>Fare:</b> $%.2f (%s)</p>
		<p>Ride ID: %s</p>`,
		r.Pickup.Address, r.Destination.Address, driver,
		r.VehicleType, r.Fare, r.PaymentMethod, r.ID)

	return SendEmail([]string{to}, "Your NextRide receipt", body)
}
