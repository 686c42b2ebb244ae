// Command inspect dumps the contents of a newsroom BadgerDB for
// debugging. It opens the database read-only so it can run against a
// live instance's files.
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
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/newsroom/badger", "Path to badger DB")
	prefix := flag.String("prefix", "post:", "Prefix to scan (post:, comment:, user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "ID", "Created", "Status", "Detail"})
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
			key := string(item.Key())

			// Skip secondary indexes and sequence counters.
			if strings.HasPrefix(key, "user_email:") || strings.HasPrefix(key, "seq:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				row, err := decodeRow(key, v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", key, err)
					return nil
				}
				table.Append(row)
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

// storedPost mirrors the repository's stored form.
type storedPost struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	AuthorID  int64  `json:"author_id"`
	CreatedAt int64  `json:"created_at"`
	DeletedAt *int64 `json:"deleted_at"`
}

type storedComment struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	AuthorID  int64  `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type storedUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
}

func decodeRow(key string, value []byte) ([]string, error) {
	switch {
	case strings.HasPrefix(key, "post:"):
		var p storedPost
		if err := json.Unmarshal(value, &p); err != nil {
			return nil, err
		}
		status := colorStatus(p.Status)
		if p.DeletedAt != nil {
			status = color.Gray.Render("deleted")
		}
		return []string{key, fmt.Sprint(p.ID), formatNanos(p.CreatedAt), status,
			fmt.Sprintf("%q by user %d", truncate(p.Title, 40), p.AuthorID)}, nil

	case strings.HasPrefix(key, "comment:"):
		var c storedComment
		if err := json.Unmarshal(value, &c); err != nil {
			return nil, err
		}
		return []string{key, fmt.Sprint(c.ID), formatNanos(c.CreatedAt), "",
			fmt.Sprintf("post %d user %d: %s", c.PostID, c.AuthorID, truncate(c.Content, 40))}, nil

	case strings.HasPrefix(key, "user:"):
		var u storedUser
		if err := json.Unmarshal(value, &u); err != nil {
			return nil, err
		}
		active := "inactive"
		if u.Active {
			active = "active"
		}
		return []string{key, fmt.Sprint(u.ID), formatNanos(u.CreatedAt), u.Role,
			fmt.Sprintf("%s <%s> %s", u.Username, u.Email, active)}, nil
	}

	return []string{key, "", "", "", truncate(string(value), 60)}, nil
}

func colorStatus(status string) string {
	switch status {
	case "approved":
		return color.Green.Render(status)
	case "rejected":
		return color.Red.Render(status)
	case "pending":
		return color.Yellow.Render(status)
	}
	return status
}

func formatNanos(nanos int64) string {
	if nanos == 0 {
		return ""
	}
	return time.Unix(0, nanos).UTC().Format("2006-01-02 15:04:05")
}

// truncate cuts on rune boundaries so multibyte text stays valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)
	return badger.Open(opts)
}
