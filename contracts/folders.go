package contracts

// TIFFGroup is a directory together with the TIFF files found directly inside it.
type TIFFGroup struct {
	Dir   string
	Files []string
}

// ConversionJob is one group plus the PDF path it is merged into.
type ConversionJob struct {
	Group      TIFFGroup
	OutputPath string
}
