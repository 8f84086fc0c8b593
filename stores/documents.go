package stores

import (
	"github.com/MrEthical07/backoffice/artifact"
)

// toArtifact decodes a base64 document, naming it fallback when the backend
// supplies no file name.
func toArtifact(d Document, fallback string) (artifact.Artifact, error) {
	a, err := artifact.Decode(d.PDF, artifact.DefaultMIMEType)
	if err != nil {
		return artifact.Artifact{}, err
	}
	name := d.FileName
	if name == "" {
		name = fallback
	}
	return a.Named(name), nil
}
