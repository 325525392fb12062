// Package redis stores session snapshots in Redis and provides a Redis
// backed DistributedLocker for multi-replica deployments.
package redis
