// Package qdrant provides a TemplateIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

// Payload keys stored with every point.
const (
	payloadTemplateID  = "template_id"
	payloadType        = "type"
	payloadName        = "name"
	payloadDescription = "description"
)

// pointNamespace derives stable point ids from template refs.
var pointNamespace = uuid.MustParse("6f1b7c1e-3f0a-4d52-9a86-2b0c4e1d9a57")

// Repository implements ports.TemplateIndex and ports.CollectionManager
// using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// apiKeyInterceptor attaches the Qdrant API key to every call.
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and every indexed template.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Upsert stores or replaces index entries. Re-indexing a template
// overwrites its previous point.
func (r *Repository) Upsert(ctx context.Context, docs []ports.IndexedTemplate) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &pb.PointStruct{
			Id: pointID(doc.TemplateID, doc.Type),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: doc.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				payloadTemplateID:  {Kind: &pb.Value_StringValue{StringValue: doc.TemplateID}},
				payloadType:        {Kind: &pb.Value_StringValue{StringValue: string(doc.Type)}},
				payloadName:        {Kind: &pb.Value_StringValue{StringValue: doc.Name}},
				payloadDescription: {Kind: &pb.Value_StringValue{StringValue: doc.Description}},
			},
		})
	}

	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search returns the templates closest to embedding. An empty
// contentType searches every type.
func (r *Repository) Search(ctx context.Context, embedding []float32, contentType entities.ContentType, limit int) ([]ports.TemplateMatch, error) {
	if limit < 1 {
		limit = 10
	}

	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         typeFilter(contentType),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToMatches(resp.Result), nil
}

// Remove deletes the entry for one template.
func (r *Repository) Remove(ctx context.Context, templateID string, contentType entities.ContentType) error {
	wait := true
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{pointID(templateID, contentType)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// Count returns the number of indexed templates.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// pointID maps a template ref to a deterministic UUID point id.
func pointID(templateID string, contentType entities.ContentType) *pb.PointId {
	ref := entities.DependencyRef{ID: templateID, Type: contentType}
	return &pb.PointId{
		PointIdOptions: &pb.PointId_Uuid{
			Uuid: uuid.NewSHA1(pointNamespace, []byte(ref.String())).String(),
		},
	}
}

// typeFilter restricts a search to one content type; nil means no filter.
func typeFilter(contentType entities.ContentType) *pb.Filter {
	if contentType == "" {
		return nil
	}
	return &pb.Filter{
		Must: []*pb.Condition{
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: payloadType,
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{
								Keyword: string(contentType),
							},
						},
					},
				},
			},
		},
	}
}

// scoredPointsToMatches converts scored points to template matches.
func scoredPointsToMatches(points []*pb.ScoredPoint) []ports.TemplateMatch {
	matches := make([]ports.TemplateMatch, 0, len(points))

	for _, point := range points {
		payload := point.Payload
		matches = append(matches, ports.TemplateMatch{
			TemplateID: getStringValue(payload, payloadTemplateID),
			Type:       entities.ContentType(getStringValue(payload, payloadType)),
			Name:       getStringValue(payload, payloadName),
			Score:      point.Score,
		})
	}

	return matches
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
