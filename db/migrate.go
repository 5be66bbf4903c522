package db

import (
	"context"
	"log"
)

// Migrate creates all tables, columns, and indexes if they don't exist.
// Safe to run multiple times (IF NOT EXISTS everywhere).
func Migrate() {
	sql := `
	CREATE EXTENSION IF NOT EXISTS pgcrypto;

	-- ═══════════════════════════════════════════
	-- USERS TABLE: customers
	-- ═══════════════════════════════════════════
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		email TEXT UNIQUE NOT NULL,
		"passwordHash" TEXT NOT NULL,
		"firstName" TEXT NOT NULL,
		"lastName" TEXT NOT NULL DEFAULT '',
		"phoneNumber" TEXT,
		"notificationToken" TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updatedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- ═══════════════════════════════════════════
	-- DRIVERS TABLE
	-- ═══════════════════════════════════════════
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		email TEXT UNIQUE NOT NULL,
		"passwordHash" TEXT NOT NULL,
		"firstName" TEXT NOT NULL,
		"lastName" TEXT NOT NULL DEFAULT '',
		"phoneNumber" TEXT,
		"licenseNumber" TEXT UNIQUE NOT NULL,
		"vehicleMake" TEXT NOT NULL DEFAULT '',
		"vehicleModel" TEXT NOT NULL DEFAULT '',
		"vehicleYear" INTEGER NOT NULL DEFAULT 0,
		"vehicleColor" TEXT NOT NULL DEFAULT '',
		"licensePlate" TEXT NOT NULL DEFAULT '',
		"vehicleType" TEXT NOT NULL DEFAULT 'sedan',
		"isAvailable" BOOLEAN NOT NULL DEFAULT FALSE,
		"isVerified" BOOLEAN NOT NULL DEFAULT FALSE,
		ratings DOUBLE PRECISION NOT NULL DEFAULT 0,
		"totalRides" INTEGER NOT NULL DEFAULT 0,
		"notificationToken" TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updatedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- ═══════════════════════════════════════════
	-- RIDES TABLE: full ride lifecycle
	-- ═══════════════════════════════════════════
	CREATE TABLE IF NOT EXISTS rides (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		"customerId" TEXT NOT NULL REFERENCES users(id),
		"customerName" TEXT NOT NULL DEFAULT '',
		"driverId" TEXT REFERENCES drivers(id),
		"driverName" TEXT,
		"pickupLat" DOUBLE PRECISION NOT NULL,
		"pickupLng" DOUBLE PRECISION NOT NULL,
		"pickupAddress" TEXT NOT NULL DEFAULT '',
		"pickupCity" TEXT NOT NULL DEFAULT '',
		"pickupState" TEXT NOT NULL DEFAULT '',
		"pickupZip" TEXT NOT NULL DEFAULT '',
		"destLat" DOUBLE PRECISION NOT NULL,
		"destLng" DOUBLE PRECISION NOT NULL,
		"destAddress" TEXT NOT NULL DEFAULT '',
		"destCity" TEXT NOT NULL DEFAULT '',
		"destState" TEXT NOT NULL DEFAULT '',
		"destZip" TEXT NOT NULL DEFAULT '',
		"vehicleType" TEXT NOT NULL DEFAULT 'sedan',
		fare DOUBLE PRECISION NOT NULL,
		"estimatedDuration" INTEGER NOT NULL DEFAULT 0,
		"paymentMethod" TEXT NOT NULL DEFAULT 'card',
		status TEXT NOT NULL DEFAULT 'requested',
		rating DOUBLE PRECISION,
		review TEXT,
		"driverLat" DOUBLE PRECISION,
		"driverLng" DOUBLE PRECISION,
		"lastLocationUpdate" TIMESTAMPTZ,
		"requestedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"acceptedAt" TIMESTAMPTZ,
		"startedAt" TIMESTAMPTZ,
		"completedAt" TIMESTAMPTZ,
		"cancelledAt" TIMESTAMPTZ,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updatedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- ═══════════════════════════════════════════
	-- NOTIFICATIONS TABLE: persisted dispatch log
	-- ═══════════════════════════════════════════
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		"userId" TEXT NOT NULL,
		"rideId" TEXT REFERENCES rides(id),
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		"isRead" BOOLEAN NOT NULL DEFAULT FALSE,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- ═══════════════════════════════════════════
	-- EXTERNAL API LOGS TABLE: centralized audit
	-- ═══════════════════════════════════════════
	CREATE TABLE IF NOT EXISTS external_api_logs (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		provider TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		"requestId" TEXT UNIQUE,
		"requestPayload" JSONB,
		"responsePayload" JSONB,
		"statusCode" INTEGER,
		"durationMs" INTEGER,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- ═══════════════════════════════════════════
	-- INDEXES: optimized for all API queries
	-- ═══════════════════════════════════════════
	CREATE INDEX IF NOT EXISTS idx_rides_customerid ON rides("customerId");
	CREATE INDEX IF NOT EXISTS idx_rides_driverid ON rides("driverId");
	CREATE INDEX IF NOT EXISTS idx_rides_status ON rides(status);
	CREATE INDEX IF NOT EXISTS idx_rides_status_requested ON rides(status, "requestedAt");
	CREATE INDEX IF NOT EXISTS idx_rides_customer_created ON rides("customerId", "createdAt");
	CREATE INDEX IF NOT EXISTS idx_rides_driver_status_created ON rides("driverId", status, "createdAt");
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_drivers_email ON drivers(email);
	CREATE INDEX IF NOT EXISTS idx_drivers_available ON drivers("isAvailable", status) WHERE "isAvailable"=TRUE AND status='active';
	CREATE INDEX IF NOT EXISTS idx_notifications_userid ON notifications("userId", "createdAt");
	CREATE INDEX IF NOT EXISTS idx_api_logs_requestid ON external_api_logs("requestId");
	CREATE INDEX IF NOT EXISTS idx_api_logs_created ON external_api_logs("createdAt");
	`

	_, err := Pool.Exec(context.Background(), sql)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Database migration completed successfully")
}
