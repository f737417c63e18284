package gfs

import (
	"os"

	"github.com/karrick/godirwalk"
)

// PruneEmptyDirs removes every directory under root that ends up with no
// children, root included. It returns the number of directories removed.
func PruneEmptyDirs(root string) (int, error) {
	var count int

	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(_ string, _ *godirwalk.Dirent) error {
			// nothing to do on the way down
			return nil
		},
		PostChildrenCallback: func(osPathname string, _ *godirwalk.Dirent) error {
			s, err := godirwalk.NewScanner(osPathname)
			if err != nil {
				return err
			}

			// Scan skips both "." and ".." entries, so a single hit means
			// the directory is not empty.
			hasChild := s.Scan()
			if err := s.Err(); err != nil {
				return err
			}

			if hasChild {
				return nil
			}

			err = os.Remove(osPathname)
			if err == nil {
				count++
			}

			return err
		},
	})

	return count, err
}
