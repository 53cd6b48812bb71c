package revision

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

func TestIgnoreMatcher(t *testing.T) {
	m, err := NewIgnoreMatcher([]string{".html", "favicon.ico", `re:^/js/vendor/`})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"index.html", true},
		{"view/core/footer.html", true},
		{"favicon.ico", true},
		{"img/favicon.ico", true},
		{"js/vendor/angular.js", true},
		{"js/app.js", false},
		{"css/style.css", false},
		{`js\vendor\jquery.js`, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.IsIgnored(tt.path), tt.path)
	}
}

func TestIgnoreMatcherAnchoredPattern(t *testing.T) {
	m, err := NewIgnoreMatcher([]string{`re:^/index\.html$`})
	require.NoError(t, err)

	assert.True(t, m.IsIgnored("index.html"))
	assert.False(t, m.IsIgnored("nested/index.html"))
}

func TestIgnoreMatcherWindowsSeparators(t *testing.T) {
	m, err := NewIgnoreMatcher([]string{`\img\favicon.ico`})
	require.NoError(t, err)
	m.AddPattern(regexp.MustCompile(`^/fonts/`))

	assert.True(t, m.IsIgnored(`img\favicon.ico`))
	assert.True(t, m.IsIgnored(`fonts\a.woff`))
	assert.False(t, m.IsIgnored("favicon.ico"))
}

func TestIgnoreMatcherInvalidPattern(t *testing.T) {
	_, err := NewIgnoreMatcher([]string{"re:("})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestIgnoreNothing(t *testing.T) {
	var m *IgnoreMatcher
	assert.False(t, m.IsIgnored("favicon.ico"))
	assert.False(t, IgnoreNothing{}.IsIgnored("favicon.ico"))
}
