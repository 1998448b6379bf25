// Package ports defines the interfaces (ports) that external adapters must implement.
// Services depend on these so they can be exercised without MySQL or MinIO.
package ports
