// Package auth provides authentication and authorization functionality for the panel.
//
// Authentication happens in one of two ways:
//   - Discord OAuth2 sign-in, the primary path for community members
//   - Local database authentication with Argon2id password hashing, used
//     for service and break-glass admin accounts
//
// # Authorization Levels
//
// Access control is tiered rather than permission based. Every protected
// surface requires one of four levels:
//   - LevelAuthenticated: any signed-in user
//   - LevelStaff: holders of the staff, gestion or direction role
//   - LevelGestion: holders of the gestion or direction role
//   - LevelDirection: holders of the direction role
//
// Role names are compared case-insensitively and a single matching role is
// enough. Levels are strictly nested: whoever passes a higher gate passes
// every lower one.
//
// # Role Synchronization
//
// Roles are mirrored from the community's Discord guild. On sign-in (and on
// demand) the synchronizer fetches the member's guild roles and reconciles
// the local role catalog and the user's attachments against them. Roles
// created inside the panel carry no Discord identifier and are never touched
// by synchronization. Fetch failures degrade to an empty role set so a
// Discord outage can never block sign-in, only strip elevated access.
//
// # Middleware
//
// Fiber middleware guards both API routes and pages:
//   - RequireLevel: JSON 401/403 answers for API routes
//   - PageGate: redirects browsers to the login page or the desktop
package auth
