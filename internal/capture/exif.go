package capture

import (
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Info holds the camera details recorded in a photo's EXIF block
type Info struct {
	HasExif      bool   `json:"has_exif"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Software     string `json:"software,omitempty"`
	DateTime     string `json:"date_time,omitempty"`
	ExposureTime string `json:"exposure_time,omitempty"`
	FNumber      string `json:"f_number,omitempty"`
	ISO          string `json:"iso,omitempty"`
	// Orientation is the EXIF orientation code 1..8, 0 when absent
	Orientation int `json:"orientation,omitempty"`
}

// ExtractInfo reads the EXIF block of an encoded image. Images without a
// recognisable EXIF header return a zero Info and no error.
func ExtractInfo(data []byte) (Info, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return Info{}, nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return Info{HasExif: true}, fmt.Errorf("parse exif: %w", err)
	}

	info := Info{HasExif: true}
	for _, entry := range entries {
		switch entry.TagName {
		case "Make":
			info.Make = tagString(entry)
		case "Model":
			info.Model = tagString(entry)
		case "Software":
			info.Software = tagString(entry)
		case "DateTimeOriginal":
			info.DateTime = tagString(entry)
		case "DateTime":
			if info.DateTime == "" {
				info.DateTime = tagString(entry)
			}
		case "ExposureTime":
			info.ExposureTime = tagString(entry)
		case "FNumber":
			info.FNumber = tagString(entry)
		case "ISOSpeedRatings", "PhotographicSensitivity":
			info.ISO = tagString(entry)
		case "Orientation":
			info.Orientation = tagShort(entry)
		}
	}
	return info, nil
}

// Camera joins make and model, dropping a make the model already repeats
func (i Info) Camera() string {
	if i.Model == "" {
		return i.Make
	}
	if i.Make == "" || strings.HasPrefix(i.Model, i.Make) {
		return i.Model
	}
	return i.Make + " " + i.Model
}

func tagString(entry exif.ExifTag) string {
	if s, ok := entry.Value.(string); ok {
		return strings.TrimSpace(strings.TrimRight(s, "\x00"))
	}
	return strings.TrimSpace(entry.Formatted)
}

func tagShort(entry exif.ExifTag) int {
	switch v := entry.Value.(type) {
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	case []uint32:
		if len(v) > 0 {
			return int(v[0])
		}
	}
	return 0
}
