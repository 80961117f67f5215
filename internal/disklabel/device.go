package disklabel

import (
	befile "github.com/diskfs/go-diskfs/backend/file"
	"github.com/pkg/errors"
)

// ReadDevice opens path read-only, decodes the label at firstSector, and
// closes the device before returning.
func ReadDevice(path string, firstSector, lastSector uint64) (*Table, error) {
	dev, err := befile.OpenFromPath(path, true)
	if err != nil {
		return nil, errors.Wrapf(err, "disklabel: open %s", path)
	}
	defer dev.Close()
	return Decode(dev, firstSector, lastSector)
}
