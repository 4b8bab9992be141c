package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultDuration is assumed when ffprobe cannot determine a chunk's length.
const DefaultDuration = 30.0

// Probe returns the duration of an audio file in seconds using ffprobe.
func Probe(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", filePath, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", output, err)
	}
	return duration, nil
}

// IsValid reports whether ffprobe can decode the file's container.
func IsValid(ctx context.Context, filePath string) bool {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-i", filePath)
	return cmd.Run() == nil
}

// Repair attempts to rebuild a corrupted container by stream-copying the
// audio into a new file without re-decoding. It returns the repaired path,
// or an error when the re-encode fails or produces an empty file.
func Repair(ctx context.Context, filePath string) (string, error) {
	outputPath := filePath + ".repaired" + filepath.Ext(filePath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", filePath,
		"-c:a", "copy",
		outputPath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg repair failed: %v, stderr: %s", err, stderr.String())
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("ffmpeg repair produced no output for %s", filePath)
	}
	return outputPath, nil
}

// ConvertToMP3IfNeeded transcodes the file to 16kHz mono MP3 when its format
// is not one Whisper handles directly. It returns an empty path when no
// conversion is needed.
func ConvertToMP3IfNeeded(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".mp3" || ext == ".wav" {
		return "", nil
	}

	outputPath := filepath.Join(os.TempDir(), uuid.New().String()+".mp3")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", filePath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "libmp3lame",
		"-q:a", "4",
		outputPath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg conversion failed: %v, stderr: %s", err, stderr.String())
	}
	return outputPath, nil
}
