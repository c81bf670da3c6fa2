package cache

// MutationKind identifies what kind of write just succeeded against the
// backend. Each kind maps to a fixed cache strategy below instead of ad hoc
// per-call decisions.
type MutationKind string

const (
	MutationMaterialAdd    MutationKind = "MaterialAdd"
	MutationMaterialRemove MutationKind = "MaterialRemove"
	MutationMaterialUpdate MutationKind = "MaterialUpdate"
	MutationJobCreate      MutationKind = "JobCreate"
	MutationJobEdit        MutationKind = "JobEdit"
	MutationJobDelete      MutationKind = "JobDelete"
	MutationReceiptAttach  MutationKind = "ReceiptAttach"
	MutationReceiptRemove  MutationKind = "ReceiptRemove"
)

type CachePolicy struct {
	PatchInPlace   bool
	InvalidateList bool
}

// policies: material and receipt mutations patch in place only, so the job
// being edited can never vanish from the list mid-edit; job-level edits
// also invalidate because the server derives fields (costs) the optimistic
// patch cannot know; create/delete change page membership and only
// invalidate.
var policies = map[MutationKind]CachePolicy{
	MutationMaterialAdd:    {PatchInPlace: true},
	MutationMaterialRemove: {PatchInPlace: true},
	MutationMaterialUpdate: {PatchInPlace: true},
	MutationJobCreate:      {InvalidateList: true},
	MutationJobEdit:        {PatchInPlace: true, InvalidateList: true},
	MutationJobDelete:      {InvalidateList: true},
	MutationReceiptAttach:  {PatchInPlace: true},
	MutationReceiptRemove:  {PatchInPlace: true},
}

func PolicyFor(kind MutationKind) CachePolicy {
	return policies[kind]
}
