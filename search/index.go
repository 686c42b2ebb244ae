// Package search maintains a full-text index over publicly visible posts.
// Only approved posts are indexed; rejection-after-approval and soft delete
// remove the document again.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/blugelabs/bluge"
)

type IIndex interface {
	IndexPost(id int64, title, body string) error
	RemovePost(id int64) error
	Search(ctx context.Context, query string, limit int) ([]int64, error)
}

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// IndexPost inserts or replaces the document for one post.
func (i *Index) IndexPost(id int64, title, body string) error {
	doc := bluge.NewDocument(strconv.FormatInt(id, 10)).
		AddField(bluge.NewTextField("title", title)).
		AddField(bluge.NewTextField("body", body))
	return i.writer.Update(doc.ID(), doc)
}

func (i *Index) RemovePost(id int64) error {
	return i.writer.Delete(bluge.NewDocument(strconv.FormatInt(id, 10)).ID())
}

// Search matches the query against title and body and returns post ids,
// best match first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	match := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(query).SetField("title")).
		AddShould(bluge.NewMatchQuery(query).SetField("body"))
	request := bluge.NewTopNSearch(limit, match)

	iter, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var ids []int64
	next, err := iter.Next()
	for err == nil && next != nil {
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			if field != "_id" {
				return true
			}
			id, parseErr := strconv.ParseInt(string(value), 10, 64)
			if parseErr != nil {
				i.log.Warn("Skipping document with non-numeric id", "id", string(value))
				return true
			}
			ids = append(ids, id)
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		next, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
