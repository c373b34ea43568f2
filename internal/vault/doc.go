// Package vault encrypts configuration files and individual values at rest.
//
// Two modes are supported. In RSA mode whole files are encrypted with a
// local 4096-bit key pair: the plaintext is zlib-compressed, split into
// OAEP-sized chunks, encrypted chunk by chunk, and stored as a single
// base64 blob. In Fernet mode individual string values are encrypted into
// Fernet tokens with a symmetric key.
//
// Key material lives in a key directory and is generated lazily the first
// time an engine is opened against it. Decryption of values and config
// files tolerates plaintext written before encryption was enabled: such
// input is passed through unchanged instead of failing.
package vault
