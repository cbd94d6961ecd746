package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"

	"github.com/Svring/galatea-sub000/pkg/types"
)

const (
	// DefaultURL is the Qdrant gRPC endpoint used when none is configured
	DefaultURL = "localhost:6334"

	// EnvQdrantURL overrides the default Qdrant endpoint
	EnvQdrantURL = "CODESCOUT_QDRANT_URL"

	// VectorSize is the embedding dimension used for every collection
	VectorSize = 1536
)

// Store talks to a Qdrant instance over gRPC.
type Store struct {
	conn        *grpc.ClientConn
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	logger      *slog.Logger
}

// NewStore connects to the Qdrant instance at url. An empty url falls back
// to the CODESCOUT_QDRANT_URL environment variable, then to DefaultURL.
func NewStore(url string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	addr := resolveAddr(url)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("could not connect to Qdrant at %s: %w", addr, err)
	}

	return &Store{
		conn:        conn,
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		logger:      logger,
	}, nil
}

// resolveAddr picks the endpoint and strips any URL scheme, since the
// client dials plain gRPC.
func resolveAddr(url string) string {
	if url == "" {
		url = os.Getenv(EnvQdrantURL)
	}
	if url == "" {
		url = DefaultURL
	}
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	return url
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection if it does not already exist.
// Existing collections are left untouched regardless of their settings.
func (s *Store) EnsureCollection(ctx context.Context, name string) error {
	_, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: name})
	if err == nil {
		s.logger.Debug("collection already exists", "collection", name)
		return nil
	}

	s.logger.Info("creating collection", "collection", name, "dimension", VectorSize)
	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	return nil
}

// Upsert writes every embedded entity into the collection as a new point
// with a random UUID. Entities without embeddings are skipped, as are
// entities whose payload cannot be converted. Returns the number of points
// written.
func (s *Store) Upsert(ctx context.Context, collection string, entities []types.Entity) (int, error) {
	points := make([]*qdrant.PointStruct, 0, len(entities))
	for _, entity := range entities {
		if !entity.HasEmbedding() {
			continue
		}

		payload, err := entityPayload(entity)
		if err != nil {
			s.logger.Warn("skipping entity with unconvertible payload",
				"entity", entity.Name, "error", err)
			continue
		}

		points = append(points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: uuid.New().String()}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: entity.Embedding}}},
			Payload: payload,
		})
	}

	if len(points) == 0 {
		s.logger.Info("no embedded entities to upsert", "collection", collection)
		return 0, nil
	}

	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           proto.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert points: %w", err)
	}

	s.logger.Info("upserted points", "collection", collection, "count", len(points))
	return len(points), nil
}

// Search returns the entities closest to the query vector, best match
// first. Points whose payload cannot be decoded are skipped. An empty
// collection yields an empty slice, not an error.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]types.Entity, error) {
	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	hits := resp.GetResult()
	if len(hits) == 0 {
		s.logger.Info("search returned no results", "collection", collection)
		return []types.Entity{}, nil
	}

	entities := make([]types.Entity, 0, len(hits))
	for _, hit := range hits {
		entity, err := payloadEntity(hit.GetPayload())
		if err != nil {
			s.logger.Warn("skipping point with undecodable payload", "error", err)
			continue
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
