package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

func TestSanitize_DropsInstanceFields(t *testing.T) {
	modified := testNow.Add(time.Hour)
	inst := &entities.ContentInstance{
		ID:                 "i1",
		TemplateID:         "t1",
		IsTemplateInstance: true,
		Type:               entities.ContentNode,
		Name:               "Village",
		Description:        "By the river",
		Fields:             map[string]any{"capacity": 10, "environment": map[string]any{"climate": "wet"}},
		Metadata:           map[string]any{"author": "a"},
		CreatedAt:          testNow,
		ModifiedAt:         &modified,
	}

	tpl := Sanitize(inst, entities.ContentNode)

	assert.Empty(t, tpl.ID)
	assert.Equal(t, entities.ContentNode, tpl.Type)
	assert.Equal(t, "Village", tpl.Name)
	assert.Equal(t, "By the river", tpl.Description)
	assert.Equal(t, inst.Fields, tpl.Fields)
	assert.Equal(t, inst.Metadata, tpl.Metadata)
	assert.True(t, tpl.CreatedAt.IsZero())

	data, err := tpl.MarshalJSON()
	require.NoError(t, err)
	for _, key := range []string{`"templateId"`, `"isTemplateInstance"`, `"createdAt"`, `"modifiedAt"`} {
		assert.NotContains(t, string(data), key)
	}
}

func TestSanitize_DoesNotAliasInstance(t *testing.T) {
	inst := &entities.ContentInstance{
		ID:     "i1",
		Fields: map[string]any{"environment": map[string]any{"climate": "wet"}},
	}

	tpl := Sanitize(inst, entities.ContentNode)
	tpl.Fields["environment"].(map[string]any)["climate"] = "dry"

	assert.Equal(t, "wet", inst.Fields["environment"].(map[string]any)["climate"])
	assert.Equal(t, "i1", inst.ID)
}

func TestSanitize_WorldPopulationIsCleared(t *testing.T) {
	pop := entities.NewWorldPopulation()
	pop.Nodes = append(pop.Nodes, &entities.ContentInstance{ID: "n1"})
	pop.NodePopulations["n1"] = []string{"c1"}
	world := &entities.ContentInstance{ID: "w1", Type: entities.ContentWorld, Name: "Aerth", Population: pop}

	tpl := Sanitize(world, entities.ContentWorld)

	require.NotNil(t, tpl.Population)
	assert.True(t, tpl.Population.IsEmpty())
	assert.Len(t, world.Population.Nodes, 1)
}

func TestSanitize_CompositeComponents(t *testing.T) {
	child := &entities.ContentInstance{
		ID:         "inst-2",
		TemplateID: "n1",
		Type:       entities.ContentNode,
		Name:       "Mill",
		Fields:     map[string]any{"capacity": 4},
	}
	composite := &entities.ContentInstance{
		ID:         "inst-1",
		TemplateID: "hamlet",
		Type:       entities.ContentComposite,
		Name:       "Hamlet",
		Fields:     map[string]any{"type": "composite"},
	}
	composite.Components.Append(entities.ContentNode, child)
	composite.Components.Ensure(entities.ContentCharacter)

	tpl := Sanitize(composite, entities.ContentComposite)

	_, hasType := tpl.Fields["type"]
	assert.False(t, hasType)
	assert.Equal(t, []entities.ContentType{entities.ContentNode, entities.ContentCharacter}, tpl.Components.Types())

	nodes := tpl.Components.Get(entities.ContentNode)
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, "Mill", nodes[0].Name)
	assert.Equal(t, 4, nodes[0].Fields["capacity"])
}

func TestApplyTemplateMetadata(t *testing.T) {
	tpl := &entities.Template{
		Name:     "Village",
		Metadata: map[string]any{"author": "a"},
	}

	applyTemplateMetadata(tpl, entities.TemplateMetadata{
		ID:           "custom",
		Description:  "new",
		Dependencies: []entities.DependencyRef{ref("n2", entities.ContentNode)},
		Attributes:   map[string]any{"tags": []any{"x"}},
	})

	assert.Equal(t, "custom", tpl.ID)
	assert.Equal(t, "Village", tpl.Name)
	assert.Equal(t, "new", tpl.Description)
	assert.Equal(t, []entities.DependencyRef{ref("n2", entities.ContentNode)}, tpl.Dependencies)
	assert.Equal(t, map[string]any{"author": "a", "tags": []any{"x"}}, tpl.Metadata)
}
