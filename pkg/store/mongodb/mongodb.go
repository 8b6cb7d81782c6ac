// Package mongodb provides a MongoDB-backed store.Store.
//
// One database holds three collections: nodes, segments, and closure. The
// closure collection carries a unique compound index on
// (ancestor, descendant); inserts run unordered and duplicate-key errors
// are swallowed, giving the idempotent dedup semantics the sink contract
// requires.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/entity"
	"github.com/voltlab/gridclosure/pkg/errors"
	"github.com/voltlab/gridclosure/pkg/store"
)

// DefaultDatabase is the database name used when none is configured.
const DefaultDatabase = "gridclosure"

// Store is a MongoDB-backed store.Store.
type Store struct {
	client   *mongo.Client
	nodes    *mongo.Collection
	segments *mongo.Collection
	closure  *mongo.Collection
}

// New connects to uri, verifies connectivity, and ensures indexes.
func New(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		nodes:    db.Collection("nodes"),
		segments: db.Collection("segments"),
		closure:  db.Collection("closure"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.closure.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ancestor", Value: 1}, {Key: "descendant", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.closure.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "descendant", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = s.nodes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// SaveNetwork implements store.Store.
func (s *Store) SaveNetwork(ctx context.Context, nodes []entity.Node, segments []entity.Segment, entries []closure.Entry) error {
	for _, coll := range []*mongo.Collection{s.closure, s.segments, s.nodes} {
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "clear %s", coll.Name())
		}
	}

	if len(nodes) > 0 {
		docs := make([]any, len(nodes))
		for i, n := range nodes {
			docs[i] = n
		}
		if _, err := s.nodes.InsertMany(ctx, docs); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "insert nodes")
		}
	}
	if len(segments) > 0 {
		docs := make([]any, len(segments))
		for i, seg := range segments {
			docs[i] = seg
		}
		if _, err := s.segments.InsertMany(ctx, docs); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "insert segments")
		}
	}
	if len(entries) > 0 {
		docs := make([]any, len(entries))
		for i, e := range entries {
			docs[i] = e
		}
		opts := options.InsertMany().SetOrdered(false)
		if _, err := s.closure.InsertMany(ctx, docs, opts); err != nil && !mongo.IsDuplicateKeyError(err) {
			return errors.Wrap(errors.ErrCodeStore, err, "insert closure entries")
		}
	}
	return nil
}

// Descendants implements store.Store.
func (s *Store) Descendants(ctx context.Context, id int, maxDepth int) ([]store.Relation, error) {
	filter := bson.M{"ancestor": id, "depth": bson.M{"$gt": 0}}
	if maxDepth > 0 {
		filter["depth"] = bson.M{"$gt": 0, "$lte": maxDepth}
	}
	sort := bson.D{{Key: "depth", Value: 1}, {Key: "descendant", Value: 1}}
	return s.queryRelations(ctx, filter, sort, "descendant")
}

// Ancestors implements store.Store.
func (s *Store) Ancestors(ctx context.Context, id int) ([]store.Relation, error) {
	filter := bson.M{"descendant": id, "depth": bson.M{"$gt": 0}}
	sort := bson.D{{Key: "depth", Value: -1}}
	return s.queryRelations(ctx, filter, sort, "ancestor")
}

// AtDepth implements store.Store.
func (s *Store) AtDepth(ctx context.Context, id int, depth int) ([]store.Relation, error) {
	if depth <= 0 {
		return nil, nil
	}
	filter := bson.M{"ancestor": id, "depth": depth}
	sort := bson.D{{Key: "descendant", Value: 1}}
	return s.queryRelations(ctx, filter, sort, "descendant")
}

// queryRelations fetches closure entries matching filter and joins node
// attributes in a second lookup keyed by the related side of each entry.
func (s *Store) queryRelations(ctx context.Context, filter bson.M, sort bson.D, side string) ([]store.Relation, error) {
	cursor, err := s.closure.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query closure")
	}
	var docs []closure.Entry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode closure entries")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(docs))
	for _, e := range docs {
		ids = append(ids, related(e, side))
	}
	names, err := s.lookupNodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	rels := make([]store.Relation, len(docs))
	for i, e := range docs {
		id := related(e, side)
		rels[i] = store.Relation{NodeID: id, Depth: e.Depth}
		if n, ok := names[id]; ok {
			rels[i].Name = n.Name
			rels[i].Type = n.Type
		}
	}
	return rels, nil
}

func related(e closure.Entry, side string) int {
	if side == "ancestor" {
		return e.Ancestor
	}
	return e.Descendant
}

func (s *Store) lookupNodes(ctx context.Context, ids []int) (map[int]entity.Node, error) {
	cursor, err := s.nodes.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "lookup nodes")
	}
	var docs []entity.Node
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode nodes")
	}
	byID := make(map[int]entity.Node, len(docs))
	for _, n := range docs {
		byID[n.ID] = n
	}
	return byID, nil
}

// Counts implements store.Store.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	var counts store.Counts
	for _, c := range []struct {
		coll *mongo.Collection
		dst  *int
	}{
		{s.nodes, &counts.Nodes},
		{s.segments, &counts.Segments},
		{s.closure, &counts.ClosureEntries},
	} {
		n, err := c.coll.CountDocuments(ctx, bson.D{})
		if err != nil {
			return store.Counts{}, errors.Wrap(errors.ErrCodeStore, err, "count %s", c.coll.Name())
		}
		*c.dst = int(n)
	}
	return counts, nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
