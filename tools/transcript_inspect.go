// Transcript inspector: dumps the local message archive as a table.
// Usage: go run ./tools -db /tmp/auctionchat/badger -prefix "msg:auction-42:"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

type archivedMessage struct {
	ID     string    `json:"id"`
	Room   string    `json:"room"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
}

func main() {
	dbPath := flag.String("db", "/tmp/auctionchat/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan, e.g. msg:auction-42:")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Room", "Timestamp", "Message ID", "Author", "Kind", "Body"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			err := item.Value(func(v []byte) error {
				var m archivedMessage
				if err := json.Unmarshal(v, &m); err != nil {
					// Log the broken entry and continue with the rest of the scan
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				displayID := m.ID
				if len(displayID) > 8 {
					displayID = displayID[:8]
				}

				table.Append([]string{
					string(item.Key()),
					m.Room,
					m.At.Local().Format("15:04:05"),
					displayID,
					m.Author,
					m.Kind,
					m.Body,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		// Corrupted value log: reopen in write mode so badger can truncate
		repairOpts := badger.DefaultOptions(path).
			WithLogger(nil).WithBypassLockGuard(true)
		return badger.Open(repairOpts)
	}
	return db, err
}
