package upload

import "sync"

// lockTable maps uploadId -> its own mutex, itself guarded by a sync.Map so
// that concurrent writes to different uploadIds never contend with each
// other (spec §5: "concurrent writes to different uploadIds must not
// interfere").
type lockTable struct {
	locks sync.Map // uploadId -> *sync.Mutex
}

func (t *lockTable) lockFor(uploadID string) *sync.Mutex {
	v, _ := t.locks.LoadOrStore(uploadID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (t *lockTable) forget(uploadID string) {
	t.locks.Delete(uploadID)
}
