// Package auth handles user accounts, password hashing, and JWT tokens.
//
// Passwords are hashed with Argon2id and stored in PHC string format.
// Access tokens are HS256 JWTs carrying the user's role and organization,
// validated by signature only so requests never hit the database.
package auth
