package redis

import "fmt"

// Key prefix for all bot data
const keyPrefix = "kbot"

// playerKey returns the Redis key for a player record
func playerKey(sender string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, sender)
}

// playersIndexKey returns the Redis key for the SET of all player keys
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// logsKey returns the Redis key for the interaction log LIST
func logsKey() string {
	return fmt.Sprintf("%s:logs", keyPrefix)
}
