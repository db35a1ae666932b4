package discover

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testSeed = "http://example.com/docs/"

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestDiscoverer(followRelative bool) *Discoverer {
	return New(testSeed, followRelative, 20, testLogger())
}

func TestDiscover_AbsoluteLinksUnderSeed(t *testing.T) {
	body := []byte(`<html><body>
		<a href="http://example.com/docs/page-one">one</a>
		<a href="http://example.com/docs/page-two">two</a>
	</body></html>`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{
		"http://example.com/docs/page-one",
		"http://example.com/docs/page-two",
	}, got)
}

func TestDiscover_BaseOutsideSeedPrefix(t *testing.T) {
	body := []byte(`<a href="http://example.com/docs/page-one">one</a>`)

	got := newTestDiscoverer(true).Discover("http://other.example.com/", "text/html", body, 20)

	assert.Nil(t, got)
}

func TestDiscover_OffPrefixCandidatesSurvive(t *testing.T) {
	// Candidates outside the seed prefix are still reported and fetched;
	// only link extraction is restricted to pages under the prefix.
	body := []byte(`<a href="http://elsewhere.example.com/page">x</a>`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{"http://elsewhere.example.com/page"}, got)
}

func TestDiscover_CapPerPage(t *testing.T) {
	body := []byte(`<body>
		<a href="http://example.com/docs/p1">1</a>
		<a href="http://example.com/docs/p2">2</a>
		<a href="http://example.com/docs/p3">3</a>
		<a href="http://example.com/docs/p4">4</a>
		<a href="http://example.com/docs/p5">5</a>
	</body>`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 2)

	assert.Equal(t, []string{
		"http://example.com/docs/p1",
		"http://example.com/docs/p2",
	}, got)
}

func TestDiscover_ZeroCap(t *testing.T) {
	body := []byte(`<a href="http://example.com/docs/page-one">one</a>`)

	assert.Nil(t, newTestDiscoverer(true).Discover(testSeed, "text/html", body, 0))
}

func TestDiscover_StripsFragment(t *testing.T) {
	body := []byte(`<a href="http://example.com/docs/page#section-3">x</a>`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{"http://example.com/docs/page"}, got)
}

func TestDiscover_FragmentOnlyDuplicatesCollapseToBase(t *testing.T) {
	body := []byte(`
		<a href="http://example.com/docs/page#a">a</a>
		<a href="http://example.com/docs/page#b">b</a>
	`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	// Both canonicalize to the same URL; de-duplication is the caller's job.
	assert.Equal(t, []string{
		"http://example.com/docs/page",
		"http://example.com/docs/page",
	}, got)
}

func TestDiscover_MinLengthFilter(t *testing.T) {
	d := New("http://ex.co/", true, 20, testLogger())
	body := []byte(`
		<a href="/x">short</a>
		<a href="/a-sufficiently-long-path">long</a>
	`)

	got := d.Discover("http://ex.co/", "text/html", body, 20)

	assert.Equal(t, []string{"http://ex.co/a-sufficiently-long-path"}, got)
}

func TestDiscover_NonHTTPSchemes(t *testing.T) {
	body := []byte(`
		<a href="mailto:someone@example.com.invalid">mail</a>
		<a href="javascript:void(document.title)">js</a>
		<a href="ftp://example.com/docs/archive.tar">ftp</a>
		<a href="https://example.com/docs/secure-page">ok</a>
	`)

	got := newTestDiscoverer(false).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{"https://example.com/docs/secure-page"}, got)
}

func TestDiscover_RelativeResolution(t *testing.T) {
	body := []byte(`<a href="guide/getting-started">g</a>`)

	got := newTestDiscoverer(true).Discover("http://example.com/docs/index.html", "text/html", body, 20)

	assert.Equal(t, []string{"http://example.com/docs/guide/getting-started"}, got)
}

func TestDiscover_RelativeIgnoredWhenDisabled(t *testing.T) {
	body := []byte(`
		<a href="guide/getting-started">rel</a>
		<a href="http://example.com/docs/absolute-page">abs</a>
	`)

	got := newTestDiscoverer(false).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{"http://example.com/docs/absolute-page"}, got)
}

func TestDiscover_DocumentOrderPreserved(t *testing.T) {
	body := []byte(`
		<a href="http://example.com/docs/zzz-last-alphabetically">z</a>
		<a href="http://example.com/docs/aaa-first-alphabetically">a</a>
	`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{
		"http://example.com/docs/zzz-last-alphabetically",
		"http://example.com/docs/aaa-first-alphabetically",
	}, got)
}

func TestDiscover_MalformedHTML(t *testing.T) {
	body := []byte(`<html><body><a href="http://example.com/docs/page-one"<div>broken`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	// The tolerant parser still finds what it can; must not panic.
	assert.LessOrEqual(t, len(got), 1)
}

func TestDiscover_EmptyBody(t *testing.T) {
	assert.Nil(t, newTestDiscoverer(true).Discover(testSeed, "text/html", nil, 20))
}

func TestDiscover_EmptyHref(t *testing.T) {
	body := []byte(`<a href="">blank</a><a href="http://example.com/docs/page-one">ok</a>`)

	got := newTestDiscoverer(true).Discover(testSeed, "text/html", body, 20)

	assert.Equal(t, []string{"http://example.com/docs/page-one"}, got)
}
