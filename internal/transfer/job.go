package transfer

import (
	"strings"

	"github.com/google/uuid"
)

// Kind selects one of the four transfer procedures.
type Kind int

const (
	UploadFiles Kind = iota
	UploadFolder
	DownloadFiles
	DownloadFolder
)

func (k Kind) String() string {
	switch k {
	case UploadFiles:
		return "upload_files"
	case UploadFolder:
		return "upload_folder"
	case DownloadFiles:
		return "download_files"
	case DownloadFolder:
		return "download_folder"
	default:
		return "unknown"
	}
}

// Upload reports whether data moves from the local side to the remote side.
func (k Kind) Upload() bool {
	return k == UploadFiles || k == UploadFolder
}

func (k Kind) successMessage() string {
	switch k {
	case UploadFiles:
		return "Upload completed."
	case UploadFolder:
		return "Folder upload completed."
	case DownloadFiles:
		return "Download completed."
	default:
		return "Folder download completed."
	}
}

func (k Kind) failurePrefix() string {
	switch k {
	case UploadFiles:
		return "Upload failed: "
	case UploadFolder:
		return "Folder upload failed: "
	case DownloadFiles:
		return "Download failed: "
	default:
		return "Folder download failed: "
	}
}

// Job describes one transfer request. Sources are local paths for uploads and
// remote paths for downloads; Destination is on the opposite side. Extract
// applies to folder kinds only.
type Job struct {
	ID          uuid.UUID
	Kind        Kind
	Sources     []string
	Destination string
	Extract     bool
}

// NewUploadFiles uploads local files into remoteDir.
func NewUploadFiles(localFiles []string, remoteDir string) Job {
	return Job{ID: uuid.New(), Kind: UploadFiles, Sources: localFiles, Destination: remoteDir}
}

// NewUploadFolder uploads localFolder into remoteDir as an archive.
func NewUploadFolder(localFolder, remoteDir string, extract bool) Job {
	return Job{ID: uuid.New(), Kind: UploadFolder, Sources: []string{localFolder}, Destination: remoteDir, Extract: extract}
}

// NewDownloadFiles downloads remote files into localDir.
func NewDownloadFiles(remoteFiles []string, localDir string) Job {
	return Job{ID: uuid.New(), Kind: DownloadFiles, Sources: remoteFiles, Destination: localDir}
}

// NewDownloadFolder downloads remoteFolder into localDir as an archive.
func NewDownloadFolder(remoteFolder, localDir string, extract bool) Job {
	return Job{ID: uuid.New(), Kind: DownloadFolder, Sources: []string{remoteFolder}, Destination: localDir, Extract: extract}
}

// Validate checks the caller-side preconditions that need no I/O.
func (j Job) Validate() error {
	sources := 0
	for _, s := range j.Sources {
		if strings.TrimSpace(s) != "" {
			sources++
		}
	}

	switch j.Kind {
	case UploadFiles:
		if sources == 0 {
			return &SelectionError{Reason: "No local files selected."}
		}
	case UploadFolder:
		if sources != 1 {
			return &SelectionError{Reason: "Select exactly one local folder."}
		}
	case DownloadFiles:
		if sources == 0 {
			return &SelectionError{Reason: "No remote files selected."}
		}
	case DownloadFolder:
		if sources != 1 {
			return &SelectionError{Reason: "Select exactly one remote folder."}
		}
	default:
		return &SelectionError{Reason: "Unknown transfer kind."}
	}

	if strings.TrimSpace(j.Destination) == "" {
		return &SelectionError{Reason: "No destination directory."}
	}
	return nil
}

func (j Job) sources() []string {
	out := make([]string, 0, len(j.Sources))
	for _, s := range j.Sources {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
