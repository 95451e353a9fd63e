package config

type UploadConfig struct {
	AllowedMimeTypes []string
	// AllowedExtensions проверяются дополнительно, когда MIME неоднозначен (xlsx определяется как zip)
	AllowedExtensions []string
	MaxSizeMB         int64
	PathPrefix        string
}

const (
	UploadComplaintAttachment = "complaint_attachment"
	UploadInventoryImport     = "inventory_import"
)

var UploadContexts = map[string]UploadConfig{
	UploadComplaintAttachment: {
		AllowedMimeTypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf", "text/plain; charset=utf-8",
		},
		MaxSizeMB:  20,
		PathPrefix: "complaints",
	},
	UploadInventoryImport: {
		AllowedMimeTypes:  []string{"application/zip", "application/octet-stream"},
		AllowedExtensions: []string{".xlsx"},
		MaxSizeMB:         10,
		PathPrefix:        "imports",
	},
}
