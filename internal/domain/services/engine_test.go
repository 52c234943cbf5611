package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/mocks"
)

func TestTemplateEngine_CreateFromTemplate(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))

	inst, err := engine.CreateFromTemplate(context.Background(), "t1",
		entities.Customization{"name": "North Village"}, entities.ContentNode)
	require.NoError(t, err)

	assert.Equal(t, "North Village", inst.Name)
	assert.Equal(t, "t1", inst.TemplateID)
	assert.True(t, inst.IsTemplateInstance)
	assert.Equal(t, "settlement", inst.Fields["type"])
	assert.Equal(t, 100, inst.Fields["capacity"])
	assert.NotEmpty(t, inst.ID)
}

func TestTemplateEngine_TemplateNotFound(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.CreateFromTemplate(context.Background(), "nope", nil, entities.ContentNode)

	var notFound *entities.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.ID)
	assert.Equal(t, entities.ContentNode, notFound.Type)
}

func TestTemplateEngine_TypeIsPartOfTheKey(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))

	_, err := engine.CreateFromTemplate(context.Background(), "t1", nil, entities.ContentCharacter)
	assert.ErrorIs(t, err, entities.ErrTemplateNotFound)
}

func TestTemplateEngine_UnknownContentType(t *testing.T) {
	engine, store := newTestEngine(nodeTemplate("t1", "Village"))

	_, err := engine.CreateFromTemplate(context.Background(), "t1", nil, "spaceship")
	assert.ErrorIs(t, err, entities.ErrUnknownContentType)
	assert.Equal(t, 0, store.GetCallCount)
}

func TestTemplateEngine_MissingDependencyBuildsNothing(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village", ref("ghost", entities.ContentNode)))

	inst, err := engine.CreateFromTemplate(context.Background(), "t1", nil, entities.ContentNode)
	require.Error(t, err)
	assert.Nil(t, inst)

	var missing *entities.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghost", missing.ID)

	history, err := engine.GetCustomizationHistory(context.Background(), "t1", entities.ContentNode)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTemplateEngine_CyclicDependency(t *testing.T) {
	engine, _ := newTestEngine(
		nodeTemplate("A", "A", ref("B", entities.ContentNode)),
		nodeTemplate("B", "B", ref("A", entities.ContentNode)),
	)

	_, err := engine.CreateFromTemplate(context.Background(), "A", nil, entities.ContentNode)
	assert.ErrorIs(t, err, entities.ErrCyclicDependency)
}

func TestTemplateEngine_StoreError(t *testing.T) {
	engine, store := newTestEngine()
	store.GetErr = errors.New("disk on fire")

	_, err := engine.CreateFromTemplate(context.Background(), "t1", nil, entities.ContentNode)
	assert.ErrorIs(t, err, store.GetErr)
	assert.NotErrorIs(t, err, entities.ErrTemplateNotFound)
}

func TestTemplateEngine_DistinctIDs(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		inst, err := engine.CreateFromTemplate(context.Background(), "t1", nil, entities.ContentNode)
		require.NoError(t, err)
		require.False(t, seen[inst.ID], "duplicate id %s", inst.ID)
		seen[inst.ID] = true
	}
}

func TestTemplateEngine_ConcurrentCreates(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.CreateFromTemplate(context.Background(), "t1", nil, entities.ContentNode)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := engine.GetCustomizationHistory(context.Background(), "t1", entities.ContentNode)
	require.NoError(t, err)
	assert.Len(t, history, 20)
}

func TestTemplateEngine_HistoryOrder(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))
	ctx := context.Background()

	first, err := engine.CreateFromTemplate(ctx, "t1", entities.Customization{"name": "A"}, entities.ContentNode)
	require.NoError(t, err)
	second, err := engine.CreateFromTemplate(ctx, "t1", entities.Customization{"name": "B"}, entities.ContentNode)
	require.NoError(t, err)

	history, err := engine.GetCustomizationHistory(ctx, "t1", entities.ContentNode)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "A", history[0].Customizations["name"])
	assert.Equal(t, first.ID, history[0].ResultID)
	assert.Equal(t, "B", history[1].Customizations["name"])
	assert.Equal(t, second.ID, history[1].ResultID)
	assert.Equal(t, testNow, history[1].Timestamp)

	other, err := engine.GetCustomizationHistory(ctx, "t1", entities.ContentCharacter)
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func TestTemplateEngine_TemplateIsNotMutated(t *testing.T) {
	tpl := nodeTemplate("t1", "Village")
	tpl.Fields["environment"] = map[string]any{"climate": "wet"}
	tpl.Metadata = map[string]any{"author": "a"}
	snapshot := tpl.Clone()
	engine, _ := newTestEngine(tpl)

	inst, err := engine.CreateFromTemplate(context.Background(), "t1", entities.Customization{
		"environment": map[string]any{"climate": "dry"},
		"metadata":    map[string]any{"author": "b"},
		"capacity":    5,
	}, entities.ContentNode)
	require.NoError(t, err)

	assert.Equal(t, snapshot, tpl)

	inst.Fields["environment"].(map[string]any)["climate"] = "frozen"
	assert.Equal(t, "wet", tpl.Fields["environment"].(map[string]any)["climate"])
}

func TestTemplateEngine_StrictValidation(t *testing.T) {
	store := mocks.NewTemplateStore(nodeTemplate("t1", "Village"))
	engine := NewTemplateEngine(store, &mocks.IDGenerator{}, WithStrictValidation(true))

	_, err := engine.CreateFromTemplate(context.Background(), "t1",
		entities.Customization{"name": "  "}, entities.ContentNode)

	var validation *entities.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Errors, "name is required and cannot be empty")

	// Warnings do not block.
	_, err = engine.CreateFromTemplate(context.Background(), "t1",
		entities.Customization{"name": 7}, entities.ContentNode)
	require.NoError(t, err)
}

func TestTemplateEngine_LenientByDefault(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))

	inst, err := engine.CreateFromTemplate(context.Background(), "t1",
		entities.Customization{"name": ""}, entities.ContentNode)
	require.NoError(t, err)
	assert.Equal(t, "", inst.Name)
}

func TestTemplateEngine_CanceledContext(t *testing.T) {
	engine, _ := newTestEngine(nodeTemplate("t1", "Village"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.CreateFromTemplate(ctx, "t1", nil, entities.ContentNode)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTemplateEngine_SaveAsTemplate(t *testing.T) {
	engine, store := newTestEngine(nodeTemplate("t1", "Village"))
	ctx := context.Background()

	inst, err := engine.CreateFromTemplate(ctx, "t1",
		entities.Customization{"name": "North Village", "capacity": 20}, entities.ContentNode)
	require.NoError(t, err)

	id, err := engine.SaveAsTemplate(ctx, inst, entities.ContentNode, entities.TemplateMetadata{
		Description: "A colder village",
		Attributes:  map[string]any{"origin": "snapshot"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", id)

	saved := store.LastSaved
	require.NotNil(t, saved)
	assert.Equal(t, "North Village", saved.Name)
	assert.Equal(t, "A colder village", saved.Description)
	assert.Equal(t, 20, saved.Fields["capacity"])
	assert.Equal(t, "snapshot", saved.Metadata["origin"])

	again, err := engine.CreateFromTemplate(ctx, id, nil, entities.ContentNode)
	require.NoError(t, err)
	assert.Equal(t, "North Village", again.Name)
	assert.Equal(t, 20, again.Fields["capacity"])
}

func TestTemplateEngine_SaveAsTemplateFailure(t *testing.T) {
	engine, store := newTestEngine()
	store.SaveErr = errors.New("read-only")

	_, err := engine.SaveAsTemplate(context.Background(), &entities.ContentInstance{
		ID:   "i1",
		Name: "N",
	}, entities.ContentNode, entities.TemplateMetadata{})

	var saveErr *entities.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, entities.ContentNode, saveErr.Type)
	assert.ErrorIs(t, err, store.SaveErr)
	assert.ErrorIs(t, err, entities.ErrSaveFailure)
}

func TestTemplateEngine_SaveAsTemplateUnknownType(t *testing.T) {
	engine, store := newTestEngine()

	_, err := engine.SaveAsTemplate(context.Background(), &entities.ContentInstance{ID: "i1"}, "boat", entities.TemplateMetadata{})
	assert.ErrorIs(t, err, entities.ErrUnknownContentType)
	assert.Equal(t, 0, store.SaveCallCount)
}

func TestTemplateEngine_SaveWorldAsCompositeTemplate(t *testing.T) {
	engine, store := newTestEngine(
		&entities.Template{ID: "w1", Type: entities.ContentWorld, Name: "Aerth"},
		nodeTemplate("n1", "Village"),
		&entities.Template{ID: "c1", Type: entities.ContentCharacter, Name: "Smith"},
	)
	ctx := context.Background()

	world, err := engine.CreateFromTemplate(ctx, "w1", nil, entities.ContentWorld)
	require.NoError(t, err)
	node, err := engine.CreateFromTemplate(ctx, "n1", entities.Customization{"capacity": 12}, entities.ContentNode)
	require.NoError(t, err)
	character, err := engine.CreateFromTemplate(ctx, "c1", nil, entities.ContentCharacter)
	require.NoError(t, err)

	world.Population.Nodes = append(world.Population.Nodes, node)
	world.Population.Characters = append(world.Population.Characters, character)
	world.Population.NodePopulations[node.ID] = []string{character.ID}

	id, err := engine.SaveWorldAsCompositeTemplate(ctx, world, entities.TemplateMetadata{Name: "Aerth, year one"})
	require.NoError(t, err)

	composite, err := store.GetTemplate(ctx, id, entities.ContentComposite)
	require.NoError(t, err)
	require.NotNil(t, composite)
	assert.Equal(t, "Aerth, year one", composite.Name)
	assert.Equal(t, []entities.ContentType{
		entities.ContentWorld, entities.ContentNode, entities.ContentInteraction, entities.ContentCharacter,
	}, composite.Components.Types())
	assert.Empty(t, composite.Components.Get(entities.ContentInteraction))
	assert.Equal(t, map[string][]string{node.ID: {character.ID}}, composite.NodePopulationStructure)

	savedWorld := composite.Components.Get(entities.ContentWorld)
	require.Len(t, savedWorld, 1)
	assert.True(t, savedWorld[0].Population.IsEmpty())
	assert.Equal(t, world.ID, savedWorld[0].Metadata[MetadataKeySourceInstance])

	savedNodes := composite.Components.Get(entities.ContentNode)
	require.Len(t, savedNodes, 1)
	assert.Equal(t, 12, savedNodes[0].Fields["capacity"])

	// The world itself keeps its population.
	assert.Len(t, world.Population.Nodes, 1)

	// The snapshot resolves back into content.
	restored, err := engine.CreateFromTemplate(ctx, id, nil, entities.ContentComposite)
	require.NoError(t, err)
	require.Len(t, restored.Components.Get(entities.ContentNode), 1)
	assert.Equal(t, 12, restored.Components.Get(entities.ContentNode)[0].Fields["capacity"])
	assert.Equal(t, "Smith", restored.Components.Get(entities.ContentCharacter)[0].Name)
}

func TestTemplateEngine_SaveWorldRejectsNonWorld(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.SaveWorldAsCompositeTemplate(context.Background(), &entities.ContentInstance{
		ID:   "n",
		Type: entities.ContentNode,
	}, entities.TemplateMetadata{})
	require.Error(t, err)
}

func TestTemplateEngine_SaveWorldFailureIsSaveError(t *testing.T) {
	engine, store := newTestEngine()
	store.SaveErr = errors.New("quota exceeded")

	_, err := engine.SaveWorldAsCompositeTemplate(context.Background(), &entities.ContentInstance{
		ID:         "w",
		Type:       entities.ContentWorld,
		Population: entities.NewWorldPopulation(),
	}, entities.TemplateMetadata{})
	assert.ErrorIs(t, err, entities.ErrSaveFailure)
}

func TestTemplateEngine_SaveWorldRejectsNilMembers(t *testing.T) {
	engine, store := newTestEngine()

	world := &entities.ContentInstance{
		ID:         "w",
		Type:       entities.ContentWorld,
		Population: entities.NewWorldPopulation(),
	}
	world.Population.Nodes = []*entities.ContentInstance{nil}
	world.Population.Characters = []*entities.ContentInstance{{ID: "c", Name: "Smith"}, nil}

	_, err := engine.SaveWorldAsCompositeTemplate(context.Background(), world, entities.TemplateMetadata{})
	require.ErrorIs(t, err, entities.ErrValidation)

	var validationErr *entities.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"population node 0 is empty", "population character 1 is empty"}, validationErr.Errors)
	assert.Zero(t, store.SaveCallCount)
}

func TestTemplateEngine_SaveNilInstance(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.SaveWorldAsCompositeTemplate(ctx, nil, entities.TemplateMetadata{})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = engine.SaveAsTemplate(ctx, nil, entities.ContentNode, entities.TemplateMetadata{})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestTemplateEngine_SaveWorldRollsBackOnFailure(t *testing.T) {
	newWorld := func() *entities.ContentInstance {
		world := &entities.ContentInstance{
			ID:         "w",
			Type:       entities.ContentWorld,
			Name:       "Aerth",
			Population: entities.NewWorldPopulation(),
		}
		for _, id := range []string{"n1", "n2", "n3"} {
			world.Population.Nodes = append(world.Population.Nodes, &entities.ContentInstance{ID: id, Name: id})
		}
		return world
	}

	tests := []struct {
		name        string
		failOn      int
		wantDeleted int
	}{
		{name: "world template", failOn: 1, wantDeleted: 0},
		{name: "second node", failOn: 3, wantDeleted: 2},
		{name: "composite", failOn: 5, wantDeleted: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, store := newTestEngine()
			store.SaveErr = errors.New("disk full")
			store.SaveErrOnCall = tt.failOn

			_, err := engine.SaveWorldAsCompositeTemplate(context.Background(), newWorld(), entities.TemplateMetadata{})
			require.ErrorIs(t, err, entities.ErrSaveFailure)
			assert.Contains(t, err.Error(), "disk full")

			assert.Len(t, store.Deleted, tt.wantDeleted)
			assert.Empty(t, store.Templates)
		})
	}
}

func TestTemplateEngine_SaveWorldRollbackFailure(t *testing.T) {
	engine, store := newTestEngine()
	store.SaveErr = errors.New("disk full")
	store.SaveErrOnCall = 2
	store.DeleteErr = errors.New("database is locked")

	world := &entities.ContentInstance{
		ID:         "w",
		Type:       entities.ContentWorld,
		Population: entities.NewWorldPopulation(),
	}
	world.Population.Nodes = append(world.Population.Nodes, &entities.ContentInstance{ID: "n1"})

	_, err := engine.SaveWorldAsCompositeTemplate(context.Background(), world, entities.TemplateMetadata{})
	require.ErrorIs(t, err, entities.ErrSaveFailure)
	assert.Contains(t, err.Error(), "rolling back world snapshot")
	assert.Contains(t, err.Error(), "database is locked")
}

type failingHistory struct{}

func (failingHistory) Record(context.Context, string, entities.ContentType, entities.CustomizationHistoryEntry) error {
	return errors.New("history unavailable")
}

func (failingHistory) History(context.Context, string, entities.ContentType) ([]entities.CustomizationHistoryEntry, error) {
	return nil, errors.New("history unavailable")
}

func TestTemplateEngine_HistoryStoreErrors(t *testing.T) {
	store := mocks.NewTemplateStore(nodeTemplate("t1", "Village"))
	engine := NewTemplateEngine(store, &mocks.IDGenerator{}, WithHistoryStore(failingHistory{}))

	_, err := engine.CreateFromTemplate(context.Background(), "t1", nil, entities.ContentNode)
	assert.ErrorContains(t, err, "history unavailable")

	_, err = engine.GetCustomizationHistory(context.Background(), "t1", entities.ContentNode)
	assert.ErrorContains(t, err, "t1:node")
}
