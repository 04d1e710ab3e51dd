// Package keycache keeps derived Blowfish key schedules around so that repeated
// requests with the same key skip the key expansion.
package keycache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/dcrodman/bfcrypt/internal/encryption"
)

// Cache maps key fingerprints to ciphers. Entries expire ttl after their last
// use. The raw key is never stored.
type Cache struct {
	cacheInstance *gocache.Cache
	logger        logrus.FieldLogger
}

// New returns an empty Cache. A ttl of -1 keeps entries until they are removed.
func New(ttl, cleanupInterval time.Duration, logger logrus.FieldLogger) *Cache {
	return &Cache{
		cacheInstance: gocache.New(ttl, cleanupInterval),
		logger:        logger,
	}
}

// Cipher returns the cipher for key, deriving and caching it on a miss. Key
// length errors from encryption.NewCipher are returned unchanged.
func (c *Cache) Cipher(key []byte) (*encryption.Cipher, error) {
	fp := Fingerprint(key)
	if v, found := c.cacheInstance.Get(fp); found {
		cipher := v.(*encryption.Cipher)
		c.cacheInstance.Set(fp, cipher, gocache.DefaultExpiration)
		return cipher, nil
	}

	cipher, err := encryption.NewCipher(key)
	if err != nil {
		return nil, err
	}
	c.cacheInstance.Set(fp, cipher, gocache.DefaultExpiration)
	c.logger.WithField("cached", c.cacheInstance.ItemCount()).Debug("derived new key schedule")
	return cipher, nil
}

// Len returns the number of cached ciphers, including expired ones that have
// not been cleaned up yet.
func (c *Cache) Len() int {
	return c.cacheInstance.ItemCount()
}

// Flush drops every cached cipher.
func (c *Cache) Flush() {
	c.cacheInstance.Flush()
}

// Fingerprint returns the hex SHA-256 digest of key.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}
