package config

import "time"

// DefaultConfigPath is the default location of the configuration file.
const DefaultConfigPath = "whitelist_config.json"

// DefaultWhitelistPath is the default location of the whitelist file.
const DefaultWhitelistPath = "whitelist.json"

// DefaultRconPort is the default remote console port of a game server.
const DefaultRconPort = 25575

// DefaultLookupURL is the default base URL of the player lookup API.
const DefaultLookupURL = "https://api.mojang.com"

// DefaultLookupTimeout is the default timeout for a single player lookup.
const DefaultLookupTimeout = 10 * time.Second

// DefaultCommandTimeout is the default timeout for a whole exchange with a destination.
const DefaultCommandTimeout = 10 * time.Second
