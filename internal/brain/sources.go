package brain

import (
	"os"

	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
)

// sourceStamp identifies the content of a source for memo keys.
// Local files add size and modification time; remote ones rely on their URL.
type sourceStamp struct {
	Location string `json:"location"`
	Size     int64  `json:"size,omitempty"`
	ModTime  int64  `json:"mod_time,omitempty"`
}

func (o *Orchestrator) sourceStamps() (map[string]sourceStamp, error) {
	stamps := make(map[string]sourceStamp, len(o.sources))
	for name, src := range o.sources {
		stamp := sourceStamp{Location: src.Location}
		if !src.IsRemote() {
			info, err := os.Stat(src.Location)
			if err != nil {
				return nil, err
			}
			stamp.Size = info.Size()
			stamp.ModTime = info.ModTime().UnixNano()
		}
		stamps[name] = stamp
	}
	return stamps, nil
}

// Sources returns the configured sources keyed by name
func (o *Orchestrator) Sources() map[string]s0_data.Source {
	return o.sources
}
