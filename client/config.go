package client

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

// Config bundles everything needed to open a Storage beyond the already-
// parsed storage configuration string (spec §6.1): the concrete driver, an
// optional metadata cache capacity, an optional statistics peer identity,
// and the ambient logger.
type Config struct {
	Driver bytekv.Driver

	// MetadataCacheCapacity is the number of metadata blocks kept resident
	// (spec §4.4). Zero disables the cache.
	MetadataCacheCapacity int

	// StatsPeerID identifies this storage to the statistics subsystem
	// (spec §4.10). The zero UUID disables statistics propagation.
	StatsPeerID uuid.UUID

	Logger *zap.Logger
}
