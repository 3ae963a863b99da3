// Package main provides the entry point for the ExiledRP community panel.
// It runs a web server built on the Fiber framework where members sign in
// with their Discord account, guild roles are mirrored into panel roles,
// and access to staff, management and direction surfaces is decided from
// those roles. The application uses gorm for data persistence and includes
// mail, staff records, emergency calls, animations, jobs, audit logs and
// runtime settings.
package main
