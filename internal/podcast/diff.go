// ABOUTME: Guid-based diff between remote and stored episodes
// ABOUTME: Decides which episodes an update pass needs to persist

package podcast

import (
	"github.com/samber/lo"

	"github.com/harper/podplay/internal/models"
)

// NewEpisodes returns the remote episodes whose guid is not among the local ones,
// in remote order. When the remote set repeats a guid only the first is kept.
func NewEpisodes(remote, local []*models.Episode) []*models.Episode {
	known := lo.SliceToMap(local, func(e *models.Episode) (string, struct{}) {
		return e.GUID, struct{}{}
	})

	unique := lo.UniqBy(remote, func(e *models.Episode) string {
		return e.GUID
	})

	return lo.Filter(unique, func(e *models.Episode, _ int) bool {
		_, ok := known[e.GUID]
		return !ok
	})
}
