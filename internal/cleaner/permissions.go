package cleaner

import (
	"fmt"
	"os"
)

// checkSpecialFile refuses devices, sockets and pipes. Symlinks are not
// followed: the link itself is what gets removed.
func checkSpecialFile(info os.FileInfo) error {
	mode := info.Mode()

	switch {
	case mode&os.ModeDevice != 0:
		return fmt.Errorf("is a device file")
	case mode&os.ModeCharDevice != 0:
		return fmt.Errorf("is a character device")
	case mode&os.ModeSocket != 0:
		return fmt.Errorf("is a socket")
	case mode&os.ModeNamedPipe != 0:
		return fmt.Errorf("is a named pipe (FIFO)")
	}

	return nil
}
