// Package flock provides cross-platform file locking utilities.
//
// Exclusive and Unlock are thin wrappers over flock(2) and LockFileEx.
// Acquire layers a polling timeout on top so writers of the same
// project snapshot serialize instead of clobbering each other:
//
//	lock, err := flock.Acquire(ctx, snapshotPath+".lock", 5*time.Second, 50*time.Millisecond)
//	if err != nil {
//	    return err
//	}
//	defer lock.Release()
package flock
