// Package ammo defines the Ammo records of Highfleet.
//
// Two game versions are supported. V1151 is the 0x168-byte record of game
// version 1.151; V1163 is the 0x188-byte record of 1.163, which adds the
// enemy firing sound and names several fields that were unknown before.
// Both embed estring.String fields and are laid out by package record.
//
// Records are exchanged as JSON or YAML with snake_case keys. Files written
// before a field was identified use its offset name (for example
// "unknown_16ch" for "ttl"); those names are accepted when decoding.
package ammo
