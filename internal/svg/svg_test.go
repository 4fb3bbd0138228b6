package svg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceSVG = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="480" height="200">
  <foreignObject x="0" y="0" width="100%" height="100%">
    <div xmlns="http://www.w3.org/1999/xhtml" class="items-wrapper">
      <section>
        <div class="anilist">
          <div class="characters">
            <img src="data:image/png;base64,AAAA" />
            <img src="https://s4.anilist.co/file/character.png" />
            <img src=" data:image/jpeg;base64,BBBB " />
          </div>
          <img src="data:image/png;base64,CCCC" />
        </div>
      </section>
    </div>
  </foreignObject>
</svg>`

const relaxedSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <foreignObject>
    <div xmlns="http://www.w3.org/1999/xhtml" class="anilist">
      <section><div class="medias"><img src="data:image/png;base64,DDDD" /></div></section>
      <img src="data:image/gif;base64,EEEE" />
    </div>
  </foreignObject>
</svg>`

const fallbackSVG = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
  <image xlink:href="data:image/png;base64,FFFF" />
  <image href="data:image/webp;base64,GGGG" />
  <image href="/relative.png" />
</svg>`

const targetSVG = `<?xml version="1.0" encoding="utf-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="480" height="100">
  <foreignObject x="10" y="20" width="50" height="60">
    <div xmlns="http://www.w3.org/1999/xhtml" class="anilist"><div class="characters"></div></div>
  </foreignObject>
  <foreignObject x="5" y="5" width="10" height="10">
    <div xmlns="http://www.w3.org/1999/xhtml" class="header">old</div>
  </foreignObject>
</svg>`

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Info(msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, msg)
}
func (r *recordingLogger) Warn(msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func parse(t *testing.T, src string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(src))
	return doc
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIsDataURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"data:image/png;base64,AAAA", true},
		{"  data:image/svg+xml;base64,AB+/=\n  ", true},
		{"data:text/plain;base64,AAAA", false},
		{"data:image/png,AAAA", false},
		{"data:image/png;base64,!!", false},
		{"https://example.com/a.png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDataURI(tt.uri); got != tt.want {
			t.Errorf("IsDataURI(%q) = %v, want %v", tt.uri, got, tt.want)
		}
	}
}

func TestExtractStrictPreservesOrderAndWarns(t *testing.T) {
	log := &recordingLogger{}
	uris, err := ExtractDataURIs(parse(t, sourceSVG), 0, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,AAAA", "data:image/jpeg;base64,BBBB"}, uris)
	assert.Len(t, log.warns, 1)
}

func TestExtractRespectsMax(t *testing.T) {
	uris, err := ExtractDataURIs(parse(t, sourceSVG), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,AAAA"}, uris)
}

func TestExtractRelaxed(t *testing.T) {
	uris, err := ExtractDataURIs(parse(t, relaxedSVG), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,DDDD", "data:image/gif;base64,EEEE"}, uris)
}

func TestExtractFallsBackToSVGImages(t *testing.T) {
	log := &recordingLogger{}
	uris, err := ExtractDataURIs(parse(t, fallbackSVG), 0, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,FFFF", "data:image/webp;base64,GGGG"}, uris)
	assert.Len(t, log.warns, 1)

	uris, err = ExtractDataURIs(parse(t, fallbackSVG), 1, nil)
	require.NoError(t, err)
	assert.Len(t, uris, 1)
}

func TestExtractNoImages(t *testing.T) {
	_, err := ExtractDataURIs(parse(t, `<svg xmlns="http://www.w3.org/2000/svg"><rect/></svg>`), 0, nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestExtractIgnoresUnnamespacedDivs(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg"><div class="anilist"><img src="data:image/png;base64,AAAA"/></div></svg>`
	_, err := ExtractDataURIs(parse(t, src), 0, nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestFindObjectOverrideClearsFirstNonAniList(t *testing.T) {
	doc := parse(t, targetSVG)
	fo, err := FindObject(doc, false)
	require.NoError(t, err)
	assert.Equal(t, "5", fo.SelectAttrValue("x", ""))
	assert.Empty(t, fo.Child)
}

func TestFindObjectMergePrefersAniList(t *testing.T) {
	doc := parse(t, targetSVG)
	fo, err := FindObject(doc, true)
	require.NoError(t, err)
	assert.Equal(t, "10", fo.SelectAttrValue("x", ""))
	assert.NotEmpty(t, fo.ChildElements())
}

func TestFindObjectFallsBackToFirst(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg">
  <foreignObject id="a"><div xmlns="http://www.w3.org/1999/xhtml" class="anilist"/></foreignObject>
  <foreignObject id="b"><div xmlns="http://www.w3.org/1999/xhtml" class="anilist"/></foreignObject>
</svg>`
	fo, err := FindObject(parse(t, src), false)
	require.NoError(t, err)
	assert.Equal(t, "a", fo.SelectAttrValue("id", ""))
	assert.Empty(t, fo.Child)

	fo, err = FindObject(parse(t, `<svg xmlns="http://www.w3.org/2000/svg"><foreignObject id="c"/></svg>`), true)
	require.NoError(t, err)
	assert.Equal(t, "c", fo.SelectAttrValue("id", ""))
}

func TestFindObjectMissing(t *testing.T) {
	_, err := FindObject(parse(t, `<svg xmlns="http://www.w3.org/2000/svg"><g/></svg>`), false)
	assert.ErrorIs(t, err, ErrNoForeignObject)
}

func TestBuildSectionStructure(t *testing.T) {
	doc := parse(t, `<svg xmlns="http://www.w3.org/2000/svg"><foreignObject/></svg>`)
	fo := doc.Root().ChildElements()[0]
	BuildSection(fo, []string{"data:image/png;base64,AAAA", "data:image/png;base64,BBBB"}, 40, 60)

	children := fo.ChildElements()
	require.Len(t, children, 2)
	assert.Equal(t, "items-wrapper", children[0].SelectAttrValue("class", ""))
	assert.Equal(t, NamespaceXHTML, children[0].NamespaceURI())
	assert.Equal(t, "metrics-end", children[1].SelectAttrValue("id", ""))

	imgs := children[0].FindElements(".//img")
	require.Len(t, imgs, 2)
	assert.Equal(t, "40", imgs[0].SelectAttrValue("width", ""))
	assert.Equal(t, "60", imgs[0].SelectAttrValue("height", ""))
	assert.Equal(t, "character", imgs[1].SelectAttrValue("alt", ""))
	assert.Equal(t, NamespaceXHTML, imgs[1].NamespaceURI())

	row := children[0].FindElement("./section/div")
	require.NotNil(t, row)
	assert.Equal(t, "row fill-width", row.SelectAttrValue("class", ""))
}

func TestInjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "anilist.svg", sourceSVG)
	target := writeFile(t, dir, "metrics.svg", targetSVG)

	log := &recordingLogger{}
	res, err := NewInjector(log).Inject(context.Background(), Options{Target: target, Source: source})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metrics.out.svg"), res.Output)
	assert.Equal(t, 2, res.Images)
	assert.Len(t, log.infos, 2)

	raw, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Equal(t, 1, strings.Count(string(raw), "<?xml"))

	out, err := ReadFile(res.Output)
	require.NoError(t, err)
	objects := out.Root().SelectElements("foreignObject")
	require.Len(t, objects, 2)
	replaced := objects[1]
	assert.Equal(t, "0", replaced.SelectAttrValue("x", ""))
	assert.Equal(t, "100%", replaced.SelectAttrValue("width", ""))
	assert.Nil(t, replaced.FindElement(".//div[@class='header']"))

	imgs := replaced.FindElements(".//img")
	require.Len(t, imgs, 2)
	assert.Equal(t, "data:image/png;base64,AAAA", imgs[0].SelectAttrValue("src", ""))
	assert.Equal(t, "36", imgs[0].SelectAttrValue("width", ""))
	assert.Equal(t, "54", imgs[0].SelectAttrValue("height", ""))
}

func TestInjectMergeAppendsToAniListObject(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "anilist.svg", sourceSVG)
	target := writeFile(t, dir, "metrics.svg", targetSVG)
	output := filepath.Join(dir, "merged.svg")

	res, err := NewInjector(nil).Inject(context.Background(), Options{
		Target: target, Source: source, Output: output, Merge: true, MaxImages: 1, Width: 20, Height: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, output, res.Output)
	assert.Equal(t, 1, res.Images)

	out, err := ReadFile(output)
	require.NoError(t, err)
	objects := out.Root().SelectElements("foreignObject")
	require.Len(t, objects, 2)
	assert.Len(t, objects[0].ChildElements(), 3)
	assert.NotNil(t, objects[1].FindElement(".//div[@class='header']"))
}

func TestInjectErrors(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "anilist.svg", sourceSVG)
	empty := writeFile(t, dir, "empty.svg", `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	broken := writeFile(t, dir, "broken.svg", `<svg><foreignObject></svg>`)
	in := NewInjector(nil)
	ctx := context.Background()

	_, err := in.Inject(ctx, Options{Target: filepath.Join(dir, "missing.svg"), Source: source})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = in.Inject(ctx, Options{Target: empty, Source: source})
	assert.ErrorIs(t, err, ErrNoForeignObject)

	_, err = in.Inject(ctx, Options{Target: source, Source: empty})
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = in.Inject(ctx, Options{Target: source, Source: broken})
	assert.Error(t, err)

	_, err = in.Inject(ctx, Options{Target: source})
	assert.Error(t, err)

	_, err = in.Inject(ctx, Options{Target: source, Source: source, MaxImages: -1})
	assert.Error(t, err)

	_, statErr := os.Stat(DefaultOutput(empty))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"metrics.svg", "metrics.out.svg"},
		{"assets/metrics.anilist.svg", "assets/metrics.anilist.out.svg"},
		{"noext", "noext.out.svg"},
	}
	for _, tt := range tests {
		if got := DefaultOutput(tt.in); got != tt.want {
			t.Errorf("DefaultOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
