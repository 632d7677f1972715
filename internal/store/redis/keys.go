package redis

// KeyPrefixAvailability is the prefix for cached batch verdicts.
const KeyPrefixAvailability = "streamscout:availability:"

// AvailabilityKey returns the Redis key for a cached batch result.
func AvailabilityKey(batchKey string) string {
	return KeyPrefixAvailability + batchKey
}
