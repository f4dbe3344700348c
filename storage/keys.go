package storage

import "encoding/binary"

// Family identifies a block family's single-byte key prefix (spec §3.2).
// Every key in the KV store starts with exactly one of these bytes, so
// families never collide regardless of how their remaining key bytes are
// composed.
type Family byte

const (
	FamilyTermType     Family = 'T'
	FamilyTermValue    Family = 'V'
	FamilyDocID        Family = 'D'
	FamilyUserName     Family = 'U'
	FamilyAttribKey    Family = 'K'
	FamilyVariable     Family = 'G'
	FamilyDocAttribute Family = 'a'
	FamilyDocMetaData  Family = 'm'
	FamilyMetaDataDescr Family = 's'
	FamilyDocFrequency Family = 'f'
	FamilyPosinfo      Family = 'p'
	FamilyDocList      Family = 'b'
	FamilyUserAcl      Family = 'u'
	FamilyAcl          Family = 'c'
	FamilyForwardIndex Family = 'w'
	FamilyInverseTerm  Family = 'i'
)

func putUint32(dst []byte, v uint32) { binary.BigEndian.PutUint32(dst, v) }

// AppendUint32 appends the big-endian encoding of v to dst. Big-endian is
// used for every fixed-width integer in a composed key so that byte-wise
// key ordering (what the KV store sorts by) matches numeric ordering.
func AppendUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	putUint32(b[:], v)
	return append(dst, b[:]...)
}

// NameKey composes a key for the TermType/TermValue/DocID/UserName/AttribKey
// families: prefix ‖ name.
func NameKey(f Family, name string) []byte {
	key := make([]byte, 0, 1+len(name))
	key = append(key, byte(f))
	return append(key, name...)
}

// VariableKey composes a key for the Variable family: prefix ‖ name.
func VariableKey(name string) []byte {
	return NameKey(FamilyVariable, name)
}

// DocAttributeKey composes prefix ‖ docno ‖ attribno.
func DocAttributeKey(docno, attribno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyDocAttribute))
	key = AppendUint32(key, docno)
	key = AppendUint32(key, attribno)
	return key
}

// DocMetaDataKey composes prefix ‖ blockno.
func DocMetaDataKey(blockno uint32) []byte {
	key := make([]byte, 0, 5)
	key = append(key, byte(FamilyDocMetaData))
	return AppendUint32(key, blockno)
}

// DocFrequencyKey composes prefix ‖ typeno ‖ termno.
func DocFrequencyKey(typeno, termno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyDocFrequency))
	key = AppendUint32(key, typeno)
	key = AppendUint32(key, termno)
	return key
}

// PosinfoKey composes prefix ‖ typeno ‖ termno ‖ last_docno.
func PosinfoKey(typeno, termno, lastDocno uint32) []byte {
	key := make([]byte, 0, 13)
	key = append(key, byte(FamilyPosinfo))
	key = AppendUint32(key, typeno)
	key = AppendUint32(key, termno)
	return AppendUint32(key, lastDocno)
}

// PosinfoDomain composes the prefix ‖ typeno ‖ termno domain for scanning an
// entire chain of posting blocks for one term.
func PosinfoDomain(typeno, termno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyPosinfo))
	key = AppendUint32(key, typeno)
	return AppendUint32(key, termno)
}

// DocListKey composes prefix ‖ typeno ‖ termno ‖ last_docno (boolean chain).
func DocListKey(typeno, termno, lastDocno uint32) []byte {
	key := make([]byte, 0, 13)
	key = append(key, byte(FamilyDocList))
	key = AppendUint32(key, typeno)
	key = AppendUint32(key, termno)
	return AppendUint32(key, lastDocno)
}

// DocListDomain composes the prefix ‖ typeno ‖ termno domain.
func DocListDomain(typeno, termno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyDocList))
	key = AppendUint32(key, typeno)
	return AppendUint32(key, termno)
}

// UserAclKey composes prefix ‖ userno ‖ last_docno.
func UserAclKey(userno, lastDocno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyUserAcl))
	key = AppendUint32(key, userno)
	return AppendUint32(key, lastDocno)
}

// UserAclDomain composes the prefix ‖ userno domain.
func UserAclDomain(userno uint32) []byte {
	key := make([]byte, 0, 5)
	key = append(key, byte(FamilyUserAcl))
	return AppendUint32(key, userno)
}

// AclKey composes prefix ‖ docno ‖ last_userno.
func AclKey(docno, lastUserno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyAcl))
	key = AppendUint32(key, docno)
	return AppendUint32(key, lastUserno)
}

// AclDomain composes the prefix ‖ docno domain.
func AclDomain(docno uint32) []byte {
	key := make([]byte, 0, 5)
	key = append(key, byte(FamilyAcl))
	return AppendUint32(key, docno)
}

// ForwardIndexKey composes prefix ‖ typeno ‖ docno ‖ last_pos.
func ForwardIndexKey(typeno, docno, lastPos uint32) []byte {
	key := make([]byte, 0, 13)
	key = append(key, byte(FamilyForwardIndex))
	key = AppendUint32(key, typeno)
	key = AppendUint32(key, docno)
	return AppendUint32(key, lastPos)
}

// ForwardIndexDomain composes the prefix ‖ typeno ‖ docno domain.
func ForwardIndexDomain(typeno, docno uint32) []byte {
	key := make([]byte, 0, 9)
	key = append(key, byte(FamilyForwardIndex))
	key = AppendUint32(key, typeno)
	return AppendUint32(key, docno)
}

// InverseTermKey composes prefix ‖ docno.
func InverseTermKey(docno uint32) []byte {
	key := make([]byte, 0, 5)
	key = append(key, byte(FamilyInverseTerm))
	return AppendUint32(key, docno)
}

// DocAttributePrefix composes prefix ‖ docno: the subtree covering every
// attribute stored for docno regardless of attribno, used to retract all of
// a document's attributes in one RemoveSubtree call (spec §4.6 delete
// pipeline).
func DocAttributePrefix(docno uint32) []byte {
	key := make([]byte, 0, 5)
	key = append(key, byte(FamilyDocAttribute))
	return AppendUint32(key, docno)
}

// MetaDataDescrKey is the singleton schema key.
func MetaDataDescrKey() []byte {
	return []byte{byte(FamilyMetaDataDescr)}
}

// EncodeUint32 returns the 4-byte big-endian encoding of v, used for
// variable-family counter values (spec §4.5's id allocators).
func EncodeUint32(v uint32) []byte {
	return AppendUint32(nil, v)
}

// DecodeUint32 decodes a 4-byte big-endian value written by EncodeUint32.
func DecodeUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
