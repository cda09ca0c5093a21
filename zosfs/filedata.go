package zosfs

import (
	"github.com/go-zosfs/zosfs/zoserr"
)

// capacityAtRank returns the number of bytes addressable through a single
// pointer slot at the given rank: rank 0 is one data cluster, rank k is a
// table of pointersPerIndexCluster slots each of rank k-1.
func capacityAtRank(rank int) uint64 {
	c := uint64(ClusterSize)
	for i := 0; i < rank; i++ {
		c *= pointersPerIndexCluster
	}
	return c
}

// readData walks the direct and indirect pointer tiers of in and fills buf
// (sized to in.size) with the file's bytes, stopping early at the first
// zero pointer it meets, which marks the end of the allocated range for a
// partially written file.
func (fs *FileSystem) readData(in *inode, buf []byte) (int, error) {
	total := 0
	for _, c := range in.direct {
		if total >= len(buf) {
			return total, nil
		}
		n, err := fs.readRank(c, 0, buf[total:])
		if err != nil {
			return total, err
		}
		total += n
		if c == 0 {
			return total, nil
		}
	}
	for rank, c := range in.indirect {
		if total >= len(buf) {
			return total, nil
		}
		n, err := fs.readRank(c, rank+1, buf[total:])
		if err != nil {
			return total, err
		}
		total += n
		if c == 0 {
			return total, nil
		}
	}
	return total, nil
}

// readRank reads up to len(out) bytes from the subtree rooted at pointer
// id, which is a data cluster when rank == 0 or an index cluster of
// pointers at rank-1 otherwise. A zero id means "nothing allocated here":
// the read stops without advancing further into out.
func (fs *FileSystem) readRank(id uint32, rank int, out []byte) (int, error) {
	if id == 0 || len(out) == 0 {
		return 0, nil
	}
	if rank == 0 {
		n := len(out)
		if n > ClusterSize {
			n = ClusterSize
		}
		return fs.readCluster(id, 0, out[:n])
	}
	table, err := fs.readIndexTable(id)
	if err != nil {
		return 0, err
	}
	childCap := capacityAtRank(rank - 1)
	total := 0
	for _, childID := range table {
		if uint64(total) >= uint64(len(out)) {
			break
		}
		end := uint64(total) + childCap
		if end > uint64(len(out)) {
			end = uint64(len(out))
		}
		n, err := fs.readRank(childID, rank-1, out[total:end])
		if err != nil {
			return total, err
		}
		total += n
		if childID == 0 {
			break
		}
	}
	return total, nil
}

// writeData implements write_data(inode, buffer, length, append): when
// append is false, every existing cluster is released first and file_size
// resets to 0. Bytes are then written starting at the current file_size.
// If not all of data is written, the prior file_size is restored and the
// error that stopped the write is returned, or PARTIAL_WRITE if none did;
// the caller is responsible for persisting the inode record once
// satisfied with the result.
func (fs *FileSystem) writeData(in *inode, data []byte, appendMode bool) error {
	prevSize := in.size
	if !appendMode {
		if err := fs.releaseAllClusters(in); err != nil {
			return err
		}
		in.size = 0
		prevSize = 0
	}

	newTotal := uint64(prevSize) + uint64(len(data))
	if newTotal > uint64(MaxFileSize) {
		return zoserr.New(zoserr.TooLarge, "writeData", nil)
	}

	written, err := fs.writeAtOffset(in, uint64(prevSize), data)
	in.size = uint32(uint64(prevSize) + uint64(written))

	// writeAtOffset may have allocated or released data clusters even on a
	// short write, so the bitmap and free-count state must be persisted
	// before returning through any path below.
	if ferr := fs.flushBitmaps(); ferr != nil {
		return ferr
	}
	if ferr := fs.flushSuperblock(); ferr != nil {
		return ferr
	}

	if err != nil {
		in.size = prevSize
		return err
	}
	if written < len(data) {
		in.size = prevSize
		return zoserr.New(zoserr.PartialWrite, "writeData", nil)
	}
	return nil
}

// writeAtOffset writes data into in's cluster tree starting at logical
// byte position start, growing the tree as needed, and returns the
// number of bytes actually written.
func (fs *FileSystem) writeAtOffset(in *inode, start uint64, data []byte) (int, error) {
	written := 0
	offset := uint64(0)

	for slot := range in.direct {
		winStart, winEnd := offset, offset+ClusterSize
		newID, err := fs.writeRankRange(in.direct[slot], 0, winStart, winEnd, start, data, &written)
		if err != nil {
			return written, err
		}
		in.direct[slot] = newID
		offset = winEnd
		if written >= len(data) {
			return written, nil
		}
	}

	for rank := 1; rank <= IndirectPointers; rank++ {
		cap := capacityAtRank(rank)
		winStart, winEnd := offset, offset+cap
		newID, err := fs.writeRankRange(in.indirect[rank-1], rank, winStart, winEnd, start, data, &written)
		if err != nil {
			return written, err
		}
		in.indirect[rank-1] = newID
		offset = winEnd
		if written >= len(data) {
			return written, nil
		}
	}
	return written, nil
}

// writeRankRange is the uniform recursive writer: rank 0 writes bytes
// directly into a data cluster; rank >= 1 allocates (if absent) an index
// cluster, loads its pointer table, recurses into each child slot, and
// rewrites the table if any child pointer changed. Windows lying
// entirely before start are skipped without allocating anything;
// recursion stops as soon as *written satisfies len(data).
func (fs *FileSystem) writeRankRange(id uint32, rank int, winStart, winEnd, start uint64, data []byte, written *int) (uint32, error) {
	if *written >= len(data) || winEnd <= start {
		return id, nil
	}
	if rank == 0 {
		return fs.writeLeafCluster(id, winStart, start, data, written)
	}

	childCap := capacityAtRank(rank - 1)
	childCount := int((winEnd - winStart) / childCap)

	table, err := fs.loadOrNewIndexTable(id)
	if err != nil {
		return id, err
	}
	changed := id == 0

	for i := 0; i < childCount; i++ {
		if *written >= len(data) {
			break
		}
		childStart := winStart + uint64(i)*childCap
		childEnd := childStart + childCap
		if childEnd <= start {
			continue
		}
		newChildID, err := fs.writeRankRange(table[i], rank-1, childStart, childEnd, start, data, written)
		if err != nil {
			return id, err
		}
		if newChildID != table[i] {
			table[i] = newChildID
			changed = true
		}
	}

	if !changed {
		return id, nil
	}
	return fs.persistIndexTable(id, table)
}

// writeLeafCluster writes whatever portion of data falls inside the
// cluster window [winStart, winStart+ClusterSize) into cluster id,
// allocating it first if absent, and advances *written.
func (fs *FileSystem) writeLeafCluster(id uint32, winStart, start uint64, data []byte, written *int) (uint32, error) {
	clusterOff := 0
	if start > winStart {
		clusterOff = int(start - winStart)
	}
	remainingInCluster := ClusterSize - clusterOff
	n := len(data) - *written
	if n > remainingInCluster {
		n = remainingInCluster
	}
	if n <= 0 {
		return id, nil
	}
	newID, err := fs.writeCluster(id, data[*written:*written+n], clusterOff, true)
	if err != nil {
		return id, err
	}
	*written += n
	return newID, nil
}

// loadOrNewIndexTable returns the pointersPerIndexCluster-slot table for
// index cluster id, or a freshly zeroed table if id is 0 (not yet
// allocated).
func (fs *FileSystem) loadOrNewIndexTable(id uint32) ([]uint32, error) {
	table := make([]uint32, pointersPerIndexCluster)
	if id == 0 {
		return table, nil
	}
	raw := make([]byte, ClusterSize)
	if _, err := fs.readCluster(id, 0, raw); err != nil {
		return nil, err
	}
	decodeIndexTable(raw, table)
	return table, nil
}

func (fs *FileSystem) readIndexTable(id uint32) ([]uint32, error) {
	return fs.loadOrNewIndexTable(id)
}

// persistIndexTable serializes table and writes it to index cluster id,
// allocating a fresh cluster first if id is 0.
func (fs *FileSystem) persistIndexTable(id uint32, table []uint32) (uint32, error) {
	raw := make([]byte, ClusterSize)
	encodeIndexTable(table, raw)
	return fs.writeCluster(id, raw, 0, true)
}

func encodeIndexTable(table []uint32, out []byte) {
	for i, v := range table {
		putUint32LE(out[i*4:], v)
	}
}

func decodeIndexTable(raw []byte, table []uint32) {
	for i := range table {
		table[i] = getUint32LE(raw[i*4:])
	}
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// releaseAllClusters frees every data and index cluster transitively
// reachable from in's direct and indirect pointers, without touching
// in.size (callers reset that themselves).
func (fs *FileSystem) releaseAllClusters(in *inode) error {
	for _, c := range in.direct {
		if err := fs.freeCluster(c); err != nil {
			return err
		}
	}
	for rank, c := range in.indirect {
		if err := fs.releaseRank(c, rank+1); err != nil {
			return err
		}
	}
	for i := range in.direct {
		in.direct[i] = noID
	}
	for i := range in.indirect {
		in.indirect[i] = noID
	}
	return nil
}

func (fs *FileSystem) releaseRank(id uint32, rank int) error {
	if id == 0 {
		return nil
	}
	if rank == 0 {
		return fs.freeCluster(id)
	}
	table, err := fs.loadOrNewIndexTable(id)
	if err != nil {
		return err
	}
	for _, childID := range table {
		if err := fs.releaseRank(childID, rank-1); err != nil {
			return err
		}
	}
	return fs.freeCluster(id)
}
