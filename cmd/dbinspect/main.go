// Package main provides a read-only inspector for the badger session
// store. It prints live sessions grouped by user, plus counts of the
// reset-code and index records, which is handy when debugging stuck
// logins without touching the server.
//
// Usage:
//
//	SESSION_DIR=~/campuscore/sessions go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	sessionPrefix        = "session:"
	sessionByUserPrefix  = "idx:sessions:user:"
	sessionByTokenPrefix = "idx:sessions:token:"
	resetCodePrefix      = "reset:"
	resetTokenPrefix     = "resettoken:"
)

// sessionRecord mirrors the stored session shape; only the fields the
// inspector prints are decoded.
type sessionRecord struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	DeviceType string    `json:"device_type"`
	Platform   string    `json:"platform"`
	ClientName string    `json:"client_name"`
}

func main() {
	dir := os.Getenv("SESSION_DIR")
	if dir == "" {
		dir = os.ExpandEnv("$HOME/campuscore/sessions")
	}

	opts := badger.DefaultOptions(dir).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer db.Close()

	fmt.Printf("=== Session Store Inspection: %s ===\n\n", dir)

	byUser := map[int64][]*sessionRecord{}
	counts := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case strings.HasPrefix(key, sessionPrefix):
				counts["sessions"]++
				var rec sessionRecord
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &rec)
				}); err != nil {
					fmt.Printf("  ! undecodable session %s: %v\n", key, err)
					continue
				}
				byUser[rec.UserID] = append(byUser[rec.UserID], &rec)
			case strings.HasPrefix(key, sessionByTokenPrefix):
				counts["token index entries"]++
			case strings.HasPrefix(key, sessionByUserPrefix):
				counts["user index entries"]++
			case strings.HasPrefix(key, resetTokenPrefix):
				counts["reset tokens"]++
			case strings.HasPrefix(key, resetCodePrefix):
				counts["reset codes"]++
			default:
				counts["other keys"]++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan store: %v", err)
	}

	for userID, sessions := range byUser {
		fmt.Printf("user %d: %d session(s)\n", userID, len(sessions))
		for _, s := range sessions {
			client := s.ClientName
			if client == "" {
				client = s.DeviceType + "/" + s.Platform
			}
			fmt.Printf("  %s  %s  last_seen=%s  expires=%s\n",
				s.ID, client,
				s.LastSeenAt.Format(time.RFC3339),
				s.ExpiresAt.Format(time.RFC3339),
			)
		}
	}

	fmt.Println()
	for label, n := range counts {
		fmt.Printf("%-20s %d\n", label, n)
	}
}
