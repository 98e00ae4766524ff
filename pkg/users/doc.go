// Package users manages Readify accounts.
//
// Service validates registrations (all fields present, birth date within
// the last 150 years), hashes passwords with bcrypt, reactivates inactive
// accounts that register again, and implements auth.UserDirectory so the
// session manager can resolve logins without depending on storage.
package users
