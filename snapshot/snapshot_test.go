package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(i int) *int { return &i }

func testSnapshot() *Snapshot {
	s := Empty()
	s.Background = 0x0e
	s.Palettes[2] = []int{0x44, 0x86, 0x1f}
	s.Groups = []Group{
		{
			Name: "player",
			Objects: []Object{
				{
					Name:             "walk1",
					DisplayModeName:  "160A",
					PaletteReference: 2,
					PixelData: [][]*int{
						{ip(0), ip(1), ip(2), ip(3)},
						{nil, nil, ip(1), nil},
					},
					Width:       4,
					Height:      2,
					PixelWidth:  8,
					PixelHeight: 4,
				},
			},
			Groups: []Group{
				{
					Name: "effects",
					Objects: []Object{
						{
							Name:             "spark",
							DisplayModeName:  "320A",
							Kangaroo:         true,
							PixelData:        [][]*int{{ip(1), nil, nil, nil, nil, nil, nil, ip(1)}},
							Width:            8,
							Height:           1,
							PixelWidth:       4,
							PixelHeight:      4,
							PaletteReference: 7,
						},
					},
				},
			},
		},
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := testSnapshot()

	b, err := s.Encode()
	require.NoError(t, err)
	assert.False(t, IsCompressed(b))

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	z, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, IsCompressed(z))

	got = new(Snapshot)
	require.NoError(t, got.UnmarshalBinary(z))
	assert.Equal(t, s, got)
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := testSnapshot().Encode()
	require.NoError(t, err)
	b, err := testSnapshot().Encode()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmpty(t *testing.T) {
	s := Empty()
	b, err := s.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"groups": []`)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Objects())
	assert.Len(t, got.Palettes, 8)
}

func TestWalk(t *testing.T) {
	var names []string
	var paths [][]string
	err := testSnapshot().Walk(func(path []string, o *Object) error {
		names = append(names, o.Name)
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"walk1", "spark"}, names)
	assert.Equal(t, [][]string{{"player"}, {"player", "effects"}}, paths)
	assert.Equal(t, 2, testSnapshot().Objects())
}

func TestBank(t *testing.T) {
	s := testSnapshot()
	b := s.Bank()
	assert.Equal(t, 0x86, int(b.Color(2, 1)))
	assert.Equal(t, 0x0e, int(b.Background()))

	e := Empty()
	e.SetBank(b)
	assert.Equal(t, s.Palettes, e.Palettes)
	assert.Equal(t, s.Background, e.Background)
}

func TestDecodeErrors(t *testing.T) {
	tables := []struct {
		name  string
		input string
		field string
	}{
		{
			"wrong type",
			`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[{"name":"o","displayModeName":"160A","width":"four"}]}]}`,
			"width",
		},
		{
			"unknown mode",
			`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[{"name":"o","displayModeName":"640A","width":1,"height":1,"pixelWidth":1,"pixelHeight":1,"pixelData":[[null]]}]}]}`,
			"groups[0].objects[0].displayModeName",
		},
		{
			"short rows",
			`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[{"name":"o","displayModeName":"160A","width":4,"height":2,"pixelWidth":1,"pixelHeight":1,"pixelData":[[0,1,2,3]]}]}]}`,
			"groups[0].objects[0].pixelData",
		},
		{
			"narrow row",
			`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[{"name":"o","displayModeName":"160A","width":4,"height":1,"pixelWidth":1,"pixelHeight":1,"pixelData":[[0,1]]}]}]}`,
			"groups[0].objects[0].pixelData[0]",
		},
		{
			"negative index",
			`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[],"groups":[{"name":"h","objects":[{"name":"o","displayModeName":"none","width":2,"height":1,"pixelWidth":1,"pixelHeight":1,"pixelData":[[0,-3]]}]}]}]}`,
			"groups[0].groups[0].objects[0].pixelData[0][1]",
		},
		{
			"zero width",
			`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[{"name":"o","displayModeName":"none","width":0,"height":1,"pixelWidth":1,"pixelHeight":1,"pixelData":[[]]}]}]}`,
			"groups[0].objects[0].width",
		},
		{
			"bad color",
			`{"version":1,"palettes":[[0,256,0]],"groups":[]}`,
			"palettes[0][1]",
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode([]byte(table.input))
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Field, table.field)
			assert.NotEmpty(t, fe.Expected)
			assert.Contains(t, err.Error(), table.field)
		})
	}
}

func TestDecodeVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":2,"groups":[]}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode([]byte(`{"groups":[]}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode([]byte(`{"version":`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode([]byte{0x28, 0xb5, 0x2f, 0xfd, 0x00})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOutOfRangeIndexIsNotAnError(t *testing.T) {
	_, err := Decode([]byte(`{"version":1,"palettes":[],"groups":[{"name":"g","objects":[{"name":"o","displayModeName":"320A","width":8,"height":1,"pixelWidth":1,"pixelHeight":1,"pixelData":[[0,1,2,3,4,5,6,7]]}]}]}`))
	assert.NoError(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := testSnapshot()

	for _, compressed := range []bool{false, true} {
		file := filepath.Join(dir, "project.json")
		if compressed {
			file = filepath.Join(dir, "project"+Extension)
		}

		require.NoError(t, Save(file, s, compressed))
		got, err := Load(file)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files should be left behind")
}

func TestAsync(t *testing.T) {
	file := filepath.Join(t.TempDir(), "project"+Extension)
	s := testSnapshot()

	done := SaveAsync(context.Background(), file, s, true)
	// Changes after the call are not saved
	s.Groups[0].Name = "changed"
	require.NoError(t, <-done)

	r := <-LoadAsync(context.Background(), file)
	require.NoError(t, r.Err)
	assert.Equal(t, "player", r.Snapshot.Groups[0].Name)
}

func TestAsyncCancelled(t *testing.T) {
	file := filepath.Join(t.TempDir(), "project.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, <-SaveAsync(ctx, file, testSnapshot(), false), context.Canceled)
	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err))

	r := <-LoadAsync(context.Background(), file)
	assert.Error(t, r.Err)
}
