package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fetch"
	"github.com/hyeniworld/loaderkit/internal/maven"
	"github.com/hyeniworld/loaderkit/internal/storage/libroot"
)

var errNoArtifactInfo = errors.New("library has neither artifact nor name")

// resolveLibrary normalizes a profile library entry. Entries carrying a
// downloads.artifact block use its path and URL first; bare maven names are
// expanded into a relative path. Either way the entry's own repository and
// then the fallback repositories are appended as candidates.
func resolveLibrary(entry domain.LibraryEntry, fallbacks []string) (domain.Library, error) {
	if entry.Downloads != nil && entry.Downloads.Artifact != nil && entry.Downloads.Artifact.Path != "" {
		art := entry.Downloads.Artifact
		coord := entry.Name
		if coord == "" {
			coord = art.Path
		}

		var sources []string
		if art.URL != "" {
			sources = append(sources, art.URL)
		}
		sources = appendUnique(sources, maven.Candidates(art.Path, entry.URL, fallbacks)...)

		return domain.Library{
			Coordinate:   coord,
			RelativePath: art.Path,
			Sources:      sources,
			ExpectedSize: art.Size,
			SHA1:         art.SHA1,
		}, nil
	}

	if entry.Name == "" {
		return domain.Library{}, errNoArtifactInfo
	}

	coord, err := maven.Parse(entry.Name)
	if err != nil {
		return domain.Library{}, err
	}
	rel := coord.Path()

	return domain.Library{
		Coordinate:   entry.Name,
		RelativePath: rel,
		Sources:      maven.Candidates(rel, entry.URL, fallbacks),
		ExpectedSize: entry.Size,
		SHA1:         entry.SHA1,
	}, nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, existing := range dst {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

// fetchLibrary downloads lib into the shared library root
func fetchLibrary(ctx context.Context, fetcher ArtifactFetcher, libs *libroot.Root, lib domain.Library) (*fetch.Result, error) {
	dest, err := libs.Path(lib.RelativePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrArtifactUnreachable, lib.Coordinate, err)
	}
	return fetcher.Fetch(ctx, fetch.Request{
		Dest:    dest,
		Sources: lib.Sources,
		Size:    lib.ExpectedSize,
		SHA1:    lib.SHA1,
	})
}
