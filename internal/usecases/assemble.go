package usecases

import (
	"postcard/internal/domain"
)

// assemble builds the canonical record from the winning candidate. The
// handle always comes from the requested URL and every media URL is routed
// through the proxy.
func (uc *ScrapePostUseCase) assemble(c domain.Candidate, ref domain.PostRef) domain.PostRecord {
	name := c.Author.Name
	if name == "" {
		name = ref.Handle
	}
	avatar := c.Author.AvatarURL
	if avatar == "" {
		avatar = domain.FallbackAvatarURL(ref.Handle)
	}
	images := c.Images
	if len(images) > domain.MaxImages {
		images = images[:domain.MaxImages]
	}
	ts := c.Timestamp
	if ts.IsZero() {
		ts = uc.now()
	}

	return domain.PostRecord{
		Author: domain.Author{
			Name:      name,
			Handle:    "@" + ref.Handle,
			AvatarURL: uc.rewriter.Rewrite(avatar),
			Verified:  c.Author.Verified,
		},
		Content: domain.Content{
			Text:   c.Text,
			Images: uc.rewriter.RewriteAll(images),
		},
		Timestamp: domain.FormatTimestamp(ts),
	}
}

func (uc *ScrapePostUseCase) assembleDemo(d domain.DemoPost) domain.PostRecord {
	return domain.PostRecord{
		Author: domain.Author{
			Name:      d.Name,
			Handle:    "@" + d.Handle,
			AvatarURL: uc.rewriter.Rewrite(d.AvatarURL()),
			Verified:  true,
		},
		Content: domain.Content{
			Text:   d.Text,
			Images: []string{},
		},
		Timestamp: domain.FormatTimestamp(uc.now()),
	}
}
