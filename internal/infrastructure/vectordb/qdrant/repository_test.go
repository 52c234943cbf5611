package qdrant

import (
	"testing"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

func TestNewRepository_RequiresCollection(t *testing.T) {
	_, err := NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334})
	require.Error(t, err)
}

func TestNewRepository_DoesNotDial(t *testing.T) {
	repo, err := NewRepository(config.QdrantConfig{
		Host:       "localhost",
		Port:       6334,
		Collection: "lore_templates_test",
		APIKey:     "secret",
	})
	require.NoError(t, err)
	assert.NoError(t, repo.Close())
}

func TestPointID(t *testing.T) {
	a := pointID("t1", entities.ContentNode).GetUuid()
	again := pointID("t1", entities.ContentNode).GetUuid()
	otherType := pointID("t1", entities.ContentCharacter).GetUuid()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.NotEqual(t, a, otherType)
}

func TestTypeFilter(t *testing.T) {
	assert.Nil(t, typeFilter(""))

	filter := typeFilter(entities.ContentNode)
	require.Len(t, filter.Must, 1)
	field := filter.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, "type", field.Key)
	assert.Equal(t, "node", field.Match.GetKeyword())
}

func TestScoredPointsToMatches(t *testing.T) {
	points := []*pb.ScoredPoint{
		{
			Score: 0.87,
			Payload: map[string]*pb.Value{
				"template_id": {Kind: &pb.Value_StringValue{StringValue: "t1"}},
				"type":        {Kind: &pb.Value_StringValue{StringValue: "node"}},
				"name":        {Kind: &pb.Value_StringValue{StringValue: "Village"}},
			},
		},
		{Score: 0.5},
	}

	matches := scoredPointsToMatches(points)
	require.Len(t, matches, 2)
	assert.Equal(t, ports.TemplateMatch{
		TemplateID: "t1",
		Type:       entities.ContentNode,
		Name:       "Village",
		Score:      0.87,
	}, matches[0])
	assert.Equal(t, ports.TemplateMatch{Score: 0.5}, matches[1])
}
