package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powertree/local-app/src/pkg/model"
)

var allFormats = []string{FormatJSON, FormatXML, FormatYAML}

func sampleTree() *model.Node {
	hidden := model.DefaultDisplayOptions()
	hidden[model.AttrNote] = false
	return &model.Node{
		ID: 1, Name: "Root", Color: "#ffffff", DisplayOptions: model.DefaultDisplayOptions(),
		ChildPower: 8.5, TotalPower: 8.5,
		Children: []*model.Node{
			{
				ID: 4, Name: "A & <B>", Power: 5, Color: "#ff0000", Location: "North", Note: "first",
				DisplayOptions: hidden, ChildPower: 3.5, TotalPower: 8.5,
				Children: []*model.Node{
					{ID: 9, Name: "B", Power: 3.5, DisplayOptions: model.DefaultDisplayOptions(), TotalPower: 3.5, Children: []*model.Node{}},
				},
			},
			{ID: 2, Name: "C", Power: 0, DisplayOptions: model.DefaultDisplayOptions(), Children: []*model.Node{}},
		},
	}
}

// shape strips ids and derived fields so two trees can be compared
// structurally.
type shape struct {
	Name, Color, Location, Note string
	Power                       float64
	Options                     model.DisplayOptions
	Children                    []shape
}

func shapeOf(n *model.Node) shape {
	s := shape{Name: n.Name, Color: n.Color, Location: n.Location, Note: n.Note, Power: n.Power, Options: n.DisplayOptions}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

func preorderIDs(n *model.Node) []int {
	ids := []int{n.ID}
	for _, c := range n.Children {
		ids = append(ids, preorderIDs(c)...)
	}
	return ids
}

func TestRoundTripAllFormats(t *testing.T) {
	for _, format := range allFormats {
		t.Run(format, func(t *testing.T) {
			original := sampleTree()
			data, err := Serialize(original, format)
			require.NoError(t, err)

			restored, err := Deserialize(data, format)
			require.NoError(t, err)

			assert.Equal(t, shapeOf(original), shapeOf(restored))
			assert.Equal(t, []int{1, 2, 3, 4}, preorderIDs(restored))
			assert.Zero(t, restored.TotalPower, "derived fields are recomputed by the caller")
		})
	}
}

func TestSerializeJSONLayout(t *testing.T) {
	data, err := Serialize(&model.Node{ID: 1, Name: "Root", DisplayOptions: model.DisplayOptions{"power": true, "name": false}, Children: []*model.Node{}}, FormatJSON)
	require.NoError(t, err)

	expected := `{
  "id": 1,
  "name": "Root",
  "power": 0,
  "color": "",
  "location": "",
  "note": "",
  "displayOptions": {
    "name": false,
    "power": true
  },
  "child_power": 0,
  "total_power": 0,
  "children": []
}`
	assert.Equal(t, expected, string(data))
}

func TestDeserializeLegacyDocument(t *testing.T) {
	// A save from before location, note and displayOptions existed.
	legacy := `{
		"id": 0, "name": "Root", "power": 0, "color": "#ffffff",
		"children": [
			{"id": 5, "name": "A", "power": "12.5", "color": "#00ff00", "child_power": 99, "children": [
				{"id": 5, "name": "B", "power": "lots"}
			]},
			{"id": 7, "name": "C", "power": 2, "displayOptions": {"power": false, "shoe_size": true}, "children": [null]},
			{"name": "D", "power": 1e400},
			{"name": "E", "power": -1e400}
		]
	}`

	root, err := Deserialize([]byte(legacy), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, preorderIDs(root))
	a := root.Children[0]
	assert.Equal(t, 12.5, a.Power)
	assert.Equal(t, "", a.Location)
	assert.Equal(t, "", a.Note)
	assert.Equal(t, model.DefaultDisplayOptions(), a.DisplayOptions)
	assert.Zero(t, a.ChildPower)
	assert.Equal(t, 0.0, a.Children[0].Power)
	assert.NotNil(t, a.Children[0].Children)

	c := root.Children[1]
	assert.False(t, c.DisplayOptions[model.AttrPower])
	assert.True(t, c.DisplayOptions[model.AttrNote])
	assert.NotContains(t, c.DisplayOptions, "shoe_size")
	assert.Empty(t, c.Children)

	// out-of-range literals are well-formed JSON and read as 0
	assert.Equal(t, 0.0, root.Children[2].Power)
	assert.Equal(t, 0.0, root.Children[3].Power)
}

func TestDeserializeLegacyYAMLAndXML(t *testing.T) {
	yamlDoc := "name: Root\nchildren:\n  - name: A\n    power: \"4\"\n  - name: B\n    power: 1.5\n"
	root, err := Deserialize([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, 4.0, root.Children[0].Power)
	assert.Equal(t, 1.5, root.Children[1].Power)

	xmlDoc := `<node name="Root"><children><node name="A" power="x"></node><node name="B" power="3"></node></children></node>`
	root, err = Deserialize([]byte(xmlDoc), FormatXML)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, 0.0, root.Children[0].Power)
	assert.Equal(t, 3.0, root.Children[1].Power)
	assert.Equal(t, model.DefaultDisplayOptions(), root.Children[1].DisplayOptions)
}

func TestDeserializeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"truncated json", FormatJSON, `{"name": "Root", "children": [`},
		{"json array", FormatJSON, `[1, 2]`},
		{"json null", FormatJSON, `null`},
		{"empty json", FormatJSON, ``},
		{"json wrong field type", FormatJSON, `{"children": "none"}`},
		{"yaml scalar", FormatYAML, `just text`},
		{"yaml broken", FormatYAML, "name: [unclosed"},
		{"xml wrong root", FormatXML, `<tree name="Root"/>`},
		{"xml garbage", FormatXML, `not xml at all`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.input), tt.format)
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.format, perr.Format)
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Serialize(sampleTree(), "csv")
	assert.Error(t, err)

	_, err = Deserialize([]byte("{}"), "csv")
	require.Error(t, err)
	var perr *ParseError
	assert.False(t, errors.As(err, &perr))
}

func TestFileExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "tree.yaml")
	format := FormatFromFilename(path, FormatJSON)
	assert.Equal(t, FormatYAML, format)

	require.NoError(t, FileExport(sampleTree(), path, format))
	root, err := FileImport(path, format)
	require.NoError(t, err)
	assert.Equal(t, shapeOf(sampleTree()), shapeOf(root))

	_, err = FileImport(filepath.Join(t.TempDir(), "missing.json"), FormatJSON)
	assert.Error(t, err)
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromFilename("tree.JSON", FormatXML))
	assert.Equal(t, FormatXML, FormatFromFilename("tree.xml", FormatJSON))
	assert.Equal(t, FormatYAML, FormatFromFilename("tree.yml", FormatJSON))
	assert.Equal(t, FormatXML, FormatFromFilename("tree.txt", FormatXML))
}

// genTree builds a random tree from generated seeds.
func genTree(seeds []int, names []string) *model.Node {
	root := &model.Node{ID: 1, Name: "Root", DisplayOptions: model.DefaultDisplayOptions(), Children: []*model.Node{}}
	nodes := []*model.Node{root}
	for i, s := range seeds {
		name := ""
		if len(names) > 0 {
			name = names[i%len(names)]
		}
		opts := model.DefaultDisplayOptions()
		opts[model.DisplayAttributes[s%len(model.DisplayAttributes)]] = s%2 == 0
		n := &model.Node{
			ID:             100 + i,
			Name:           name,
			Power:          float64(s%97) / 4,
			Location:       name,
			DisplayOptions: opts,
			Children:       []*model.Node{},
		}
		parent := nodes[s%len(nodes)]
		parent.Children = append(parent.Children, n)
		nodes = append(nodes, n)
	}
	return root
}

func TestRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	for _, format := range allFormats {
		format := format
		properties.Property(format+" round trip preserves structure and renumbers ids", prop.ForAll(
			func(seeds []int, names []string) bool {
				original := genTree(seeds, names)
				data, err := Serialize(original, format)
				if err != nil {
					return false
				}
				restored, err := Deserialize(data, format)
				if err != nil {
					return false
				}
				ids := preorderIDs(restored)
				for i, id := range ids {
					if id != i+1 {
						return false
					}
				}
				return assert.ObjectsAreEqual(shapeOf(original), shapeOf(restored))
			},
			gen.SliceOf(gen.IntRange(0, 500)),
			gen.SliceOf(gen.AlphaString()),
		))
	}

	properties.TestingRun(t)
}
