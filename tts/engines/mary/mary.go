// Package mary wraps MaryTTS voices through the Txt2Wav helper. Unlike
// the one-shot tools, Txt2Wav stays resident: text lines go in on stdin
// and each reply is a decimal byte count followed by exactly that many
// bytes of WAV audio. One process serves one voice at a time; selecting
// a different voice replaces it.
package mary

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/tts"
)

// Engine implements tts.Engine on top of a MaryTTS installation
// directory. Requests are serialized: the wire protocol has no framing
// beyond the byte-count line, so interleaved writers would corrupt it.
type Engine struct {
	baseDir string
	timeout time.Duration
	logger  *log.Logger

	mu        sync.Mutex
	voices    map[string]tts.Voice
	voiceJars map[string]string
	proc      *voiceProcess
}

// voiceProcess is the single resident Txt2Wav process.
type voiceProcess struct {
	voiceID string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
}

// New scans baseDir for voice jars and verifies that a Java runtime is
// available. The Txt2Wav process itself is started lazily on the first
// request.
func New(baseDir string, timeout time.Duration, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("engine", "marytts")

	if _, err := exec.LookPath("java"); err != nil {
		return nil, fmt.Errorf("%w: marytts requires java", tts.ErrEngineUnavailable)
	}
	if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: marytts dir %s", tts.ErrEngineUnavailable, baseDir)
	}

	e := &Engine{
		baseDir:   baseDir,
		timeout:   timeout,
		logger:    logger,
		voices:    make(map[string]tts.Voice),
		voiceJars: make(map[string]string),
	}
	if err := e.loadVoices(); err != nil {
		return nil, err
	}
	if len(e.voices) == 0 {
		return nil, fmt.Errorf("%w: no marytts voice jars in %s", tts.ErrEngineUnavailable, baseDir)
	}
	return e, nil
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return "marytts" }

// Voices returns the catalog discovered from the voice jars.
func (e *Engine) Voices(context.Context) ([]tts.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]tts.Voice, 0, len(e.voices))
	for _, v := range e.voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Say sends one text line to the resident process and reads back the
// WAV payload. A protocol error leaves the process in an unknown state,
// so it is torn down and the next request starts fresh.
func (e *Engine) Say(ctx context.Context, text, voiceID string, _ tts.SynthesisOptions) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	proc, err := e.processFor(voiceID)
	if err != nil {
		return nil, err
	}

	type result struct {
		wav []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		wav, err := speak(proc.stdin, proc.stdout, text)
		done <- result{wav, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			e.stopLocked()
			return nil, fmt.Errorf("marytts voice %s: %w", voiceID, res.err)
		}
		return res.wav, nil
	case <-ctx.Done():
		e.stopLocked()
		<-done
		return nil, ctx.Err()
	}
}

// Shutdown terminates the resident process if one is running.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

// speak runs one round of the Txt2Wav line protocol.
func speak(stdin io.Writer, stdout *bufio.Reader, text string) ([]byte, error) {
	line := strings.TrimSpace(text) + "\n"
	if _, err := io.WriteString(stdin, line); err != nil {
		return nil, fmt.Errorf("write text: %w", err)
	}

	sizeLine, err := stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read size: %w", err)
	}
	size, err := strconv.Atoi(strings.TrimSpace(sizeLine))
	if err != nil || size < 0 {
		return nil, fmt.Errorf("bad size line %q", strings.TrimSpace(sizeLine))
	}

	wav := make([]byte, size)
	if _, err := io.ReadFull(stdout, wav); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return wav, nil
}

// processFor returns the resident process for voiceID, replacing any
// process bound to a different voice.
func (e *Engine) processFor(voiceID string) (*voiceProcess, error) {
	if e.proc != nil && e.proc.voiceID == voiceID {
		return e.proc, nil
	}
	e.stopLocked()

	voice, ok := e.voices[voiceID]
	if !ok {
		return nil, fmt.Errorf("%w: marytts voice %s", tts.ErrVoiceNotFound, voiceID)
	}
	voiceJar := e.voiceJars[voiceID]

	langJar := filepath.Join(e.baseDir, "lib", fmt.Sprintf("marytts-lang-%s-5.2.jar", voice.Language))
	if _, err := os.Stat(langJar); err != nil {
		return nil, fmt.Errorf("missing language jar %s: %w", langJar, err)
	}

	classpath := []string{
		voiceJar,
		langJar,
		filepath.Join(e.baseDir, "lib", "txt2wav-1.0-SNAPSHOT.jar"),
	}
	coreJars, err := filepath.Glob(filepath.Join(e.baseDir, "lib", "marytts", "*.jar"))
	if err == nil {
		classpath = append(classpath, coreJars...)
	}

	cmd := exec.Command("java", "-cp", strings.Join(classpath, ":"), "de.dfki.mary.Txt2Wav", "-v", voice.ID)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("start marytts: %w", err)
	}

	e.logger.Debug("started process", "voice", voiceID, "pid", cmd.Process.Pid)
	e.proc = &voiceProcess{
		voiceID: voiceID,
		cmd:     cmd,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdout),
	}
	return e.proc, nil
}

// stopLocked tears down the resident process. Callers hold e.mu.
func (e *Engine) stopLocked() {
	if e.proc == nil {
		return
	}
	proc := e.proc
	e.proc = nil

	e.logger.Debug("stopping process", "voice", proc.voiceID)
	proc.stdin.Close()

	done := make(chan struct{})
	go func() {
		proc.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if proc.cmd.Process != nil {
			proc.cmd.Process.Kill()
		}
		<-done
	}
}

// loadVoices opens every voice-*.jar under baseDir and reads the
// embedded voice.config for name, locale, and gender.
func (e *Engine) loadVoices() error {
	return filepath.WalkDir(e.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), "voice-") || !strings.HasSuffix(d.Name(), ".jar") {
			return nil
		}

		voice, ok := readVoiceJar(path)
		if !ok {
			return nil
		}
		e.voices[voice.ID] = voice
		e.voiceJars[voice.ID] = path
		e.logger.Debug("found voice", "id", voice.ID, "locale", voice.Locale)
		return nil
	})
}

// readVoiceJar extracts voice metadata from a jar's voice.config entry.
func readVoiceJar(path string) (tts.Voice, bool) {
	jar, err := zip.OpenReader(path)
	if err != nil {
		return tts.Voice{}, false
	}
	defer jar.Close()

	for _, entry := range jar.File {
		if !strings.HasSuffix(entry.Name, "/voice.config") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			continue
		}
		voice, ok := parseVoiceConfig(rc)
		rc.Close()
		if ok {
			return voice, true
		}
	}
	return tts.Voice{}, false
}

// parseVoiceConfig reads the key=value pairs of a voice.config file.
// A usable entry needs at least a name and a locale.
func parseVoiceConfig(r io.Reader) (tts.Voice, bool) {
	var name, locale, gender string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case key == "name":
			name = value
		case key == "locale":
			locale = value
		case strings.HasSuffix(key, ".gender"):
			gender = value
		}
	}

	if name == "" || locale == "" {
		return tts.Voice{}, false
	}
	lang, _, _ := strings.Cut(locale, "_")
	return tts.Voice{
		ID:       name,
		Name:     name,
		Gender:   gender,
		Language: lang,
		Locale:   strings.ReplaceAll(strings.ToLower(locale), "-", "_"),
	}, true
}
