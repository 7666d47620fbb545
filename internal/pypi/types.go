package pypi

// Project is the decoded JSON index document for a single package: its
// display name plus every published version and the files released for it.
type Project struct {
	Info     ProjectInfo          `json:"info"`
	Releases map[string][]Release `json:"releases"`
}

// ProjectInfo carries the package-level metadata we care about.
type ProjectInfo struct {
	Name string `json:"name"`
}

// Name returns the package display name from the index document.
func (p *Project) Name() string {
	return p.Info.Name
}

// Release describes one downloadable file published for a version.
type Release struct {
	Filename       string `json:"filename"`
	PythonVersion  string `json:"python_version"`
	RequiresPython string `json:"requires_python"`
	URL            string `json:"url"`
	Size           int64  `json:"size"`
}
