package domain

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DemoPost is a static post served for a demo keyword without any network call.
type DemoPost struct {
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
	Text   string `yaml:"text"`
}

// AvatarURL returns the avatar-by-handle URL for the demo author.
func (d DemoPost) AvatarURL() string {
	return FallbackAvatarURL(d.Handle)
}

//go:embed demo_posts.yaml
var demoPostsYAML []byte

var demoPosts = mustLoadDemoPosts(demoPostsYAML)

func mustLoadDemoPosts(data []byte) map[string]DemoPost {
	posts := make(map[string]DemoPost)
	if err := yaml.Unmarshal(data, &posts); err != nil {
		panic("domain: invalid demo_posts.yaml: " + err.Error())
	}
	return posts
}

// LookupDemo returns the demo post for input, matched case-insensitively
// after trimming whitespace.
func LookupDemo(input string) (DemoPost, bool) {
	post, ok := demoPosts[strings.ToLower(strings.TrimSpace(input))]
	return post, ok
}

// DemoKeywords returns the demo keywords in alphabetical order.
func DemoKeywords() []string {
	keys := make([]string, 0, len(demoPosts))
	for k := range demoPosts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
