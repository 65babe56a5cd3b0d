package domain

// FileType represents the allowed input document types.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeTIFF FileType = "tiff"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeHEIC FileType = "heic"
	FileTypeWEBP FileType = "webp"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/tiff":      FileTypeTIFF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/heic":      FileTypeHEIC,
	"image/heif":      FileTypeHEIC,
	"image/webp":      FileTypeWEBP,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"tif":  FileTypeTIFF,
	"tiff": FileTypeTIFF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"heic": FileTypeHEIC,
	"heif": FileTypeHEIC,
	"webp": FileTypeWEBP,
}

// DocType labels a document by its overall kind. The classifier always
// produces a member of this closed set, falling back to DocTypeUnknown.
type DocType string

const (
	DocTypeBill          DocType = "BILL"
	DocTypeEOB           DocType = "EOB"
	DocTypeLetter        DocType = "LETTER"
	DocTypePortal        DocType = "PORTAL"
	DocTypeInsuranceCard DocType = "INSURANCE_CARD"
	DocTypeUnknown       DocType = "UNKNOWN"
)

// CodeSystem identifies the vocabulary a validated billing code belongs to.
type CodeSystem string

const (
	CodeSystemCPT     CodeSystem = "CPT"
	CodeSystemHCPCS   CodeSystem = "HCPCS"
	CodeSystemRevenue CodeSystem = "REV"
	CodeSystemUnknown CodeSystem = "UNKNOWN"
)

// NoteUnstructuredRow marks a line item whose code could not be validated.
// Such an item never carries a code; the raw description and charge are
// preserved so totals stay auditable.
const NoteUnstructuredRow = "unstructured_row"
