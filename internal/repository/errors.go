// Package repository holds the MySQL persistence layer.  Sentinel
// errors defined here let callers branch on failure scenarios without
// inspecting driver-specific errors.  Not-found conditions are reported
// as sql.ErrNoRows straight from the driver; the sentinels below cover
// the cases the driver cannot express.
package repository

import "errors"

// ErrEmailExists is returned when registering a user whose email is
// already taken (unique key violation).
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNumberExists is returned when creating a room whose room
// number collides with an existing one.
var ErrRoomNumberExists = errors.New("room number already exists")
