// Package database handles connections to the back-office database.
//
// It provides a thin wrapper around GORM to configure MySQL connections
// based on the application's configuration. A sqlite driver is supported
// for in-memory test databases.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
