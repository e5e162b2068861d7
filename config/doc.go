// Package config loads layered application configuration into one immutable
// tree and decodes it into caller-declared structs.
//
// Two merge passes run, in this order, on every build:
//
// Dotenv pass (first write wins, a variable that is already set is never
// overwritten):
//  1. Process environment
//  2. <dir>/.env
//  3. <dir>/local.env
//  4. <dir>/<env>.env
//  5. <dir>/default.env
//  6. <dir>/<env>-secrets.env.enc (decrypted)
//
// Structured pass (later sources override earlier keys):
//  1. <dir>/default.yaml
//  2. <dir>/<env>.yaml
//  3. <dir>/<env>-secrets.yaml
//  4. <dir>/<env>-secrets.yaml.enc (decrypted)
//  5. <dir>/local-secrets.yaml.enc (decrypted)
//  6. <dir>/local.yaml
//  7. Environment variables, optionally prefixed, "__" between segments
//
// The directory comes from CONFIG_DIR (default ./conf), the environment name
// from ENV (dev, stag or prod; default dev) and the secrets key from
// SECRETS_ENCRYPTION_KEY. Every file is optional. Encrypted files are skipped
// when no key is present and treated as absent when they cannot be decrypted.
//
// The main entry point is [New], which returns a *[Config] to be passed to
// consumers, and [Decode] for typed access. [Init], [InitDefault] and
// [MustLoad] provide a process-wide instance built at most once.
package config
