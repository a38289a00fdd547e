// Package password hashes member passwords with Argon2id and verifies hashes
// left behind by the previous bcrypt-based member store.
//
// # Output format
//
// New hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Hasher.NeedsUpgrade] reports true for bcrypt hashes and for Argon2id hashes
// produced with weaker parameters, so the Engine can rehash after the next
// successful sign-in.
//
// # What this package must NOT do
//
//   - Enforce password policy. Length bounds for member passwords live in the Engine.
//   - Log plaintext passwords.
package password
