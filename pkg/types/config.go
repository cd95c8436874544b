package types

// Section is one named block of the archive configuration. It pairs a local
// source directory with a remote destination and says whether top-level
// recordings are converted before the directory is mirrored.
type Section struct {
	// Name is the mapping key the section was declared under.
	Name string `json:"-" yaml:"-"`

	// Local is the source directory on this machine.
	Local string `json:"local" yaml:"local"`

	// Remote is the rsync destination (a path or host:path).
	Remote string `json:"remote" yaml:"remote"`

	// ConvertToMP3 enables MP3 encoding of top-level WAV files in Local.
	ConvertToMP3 bool `json:"convert_to_mp3" yaml:"convert_to_mp3"`

	// Skip excludes the section from the run without removing it from the file.
	Skip bool `json:"skip,omitempty" yaml:"skip,omitempty"`

	// RemoteRsyncPath is passed as --rsync-path when the remote rsync binary
	// is not on the remote PATH (e.g. on a NAS).
	RemoteRsyncPath string `json:"remote_rsync_path,omitempty" yaml:"remote_rsync_path,omitempty"`
}

// RunOptions holds the run-wide settings assembled from flags and environment.
type RunOptions struct {
	// DryRun prints external commands instead of executing them.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// ConfigPath is the sections file (default "config.yml").
	ConfigPath string `json:"config" yaml:"config"`

	// LogFile, when set, receives the output of external commands.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// JournalPath, when set, is the SQLite database recording runs.
	JournalPath string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// SSHIdentity, when set, is the private key rsync's ssh transport uses.
	SSHIdentity string `json:"ssh_identity,omitempty" yaml:"ssh_identity,omitempty"`
}
