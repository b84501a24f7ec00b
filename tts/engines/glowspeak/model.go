package glowspeak

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX session wrappers. The acoustic model maps phoneme ids to a mel
// spectrogram; the vocoder maps mels to a waveform. Both graphs have
// dynamic shapes, so DynamicAdvancedSession is used throughout.

var ortInit sync.Once

// initRuntime loads the onnxruntime shared library once per process.
// The path can be overridden with ONNXRUNTIME_LIB_PATH.
func initRuntime() error {
	var err error
	ortInit.Do(func() {
		if ort.IsInitialized() {
			return
		}
		libPath := os.Getenv("ONNXRUNTIME_LIB_PATH")
		if libPath == "" {
			for _, candidate := range []string{
				"/usr/local/lib/libonnxruntime.so",
				"/usr/local/lib/libonnxruntime.dylib",
				"/usr/lib/libonnxruntime.so",
			} {
				if _, statErr := os.Stat(candidate); statErr == nil {
					libPath = candidate
					break
				}
			}
		}
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		err = ort.InitializeEnvironment()
	})
	return err
}

// acousticModel bundles an ONNX session with the voice's phoneme
// tables and phonemizer.
type acousticModel struct {
	session    *ort.DynamicAdvancedSession
	phonemizer *phonemizer
	phonemeIDs map[string]int64
	phonemeMap map[string][]string
}

func loadAcousticModel(dir, language string) (*acousticModel, error) {
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("onnxruntime init: %w", err)
	}

	ph, err := newPhonemizer(language)
	if err != nil {
		return nil, err
	}

	idsFile, err := os.Open(filepath.Join(dir, "phonemes.txt"))
	if err != nil {
		return nil, err
	}
	phonemeIDs, err := loadPhonemeIDs(idsFile)
	idsFile.Close()
	if err != nil {
		return nil, fmt.Errorf("phonemes.txt: %w", err)
	}

	var phonemeMap map[string][]string
	if mapFile, err := os.Open(filepath.Join(dir, "phoneme_map.txt")); err == nil {
		phonemeMap, err = loadPhonemeMap(mapFile)
		mapFile.Close()
		if err != nil {
			return nil, fmt.Errorf("phoneme_map.txt: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		filepath.Join(dir, "generator.onnx"),
		[]string{"input", "input_lengths", "scales"},
		[]string{"output"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("acoustic model %s: %w", dir, err)
	}

	return &acousticModel{
		session:    session,
		phonemizer: ph,
		phonemeIDs: phonemeIDs,
		phonemeMap: phonemeMap,
	}, nil
}

// infer runs the acoustic model, returning the flat mel data and the
// mel channel/frame dimensions.
func (m *acousticModel) infer(ids []int64, noiseScale, lengthScale float64) ([]float32, int, int, error) {
	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(ids))), ids)
	if err != nil {
		return nil, 0, 0, err
	}
	defer inputTensor.Destroy()

	lengthsTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(len(ids))})
	if err != nil {
		return nil, 0, 0, err
	}
	defer lengthsTensor.Destroy()

	scalesTensor, err := ort.NewTensor(ort.NewShape(2), []float32{float32(noiseScale), float32(lengthScale)})
	if err != nil {
		return nil, 0, 0, err
	}
	defer scalesTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{inputTensor, lengthsTensor, scalesTensor}, outputs); err != nil {
		return nil, 0, 0, fmt.Errorf("acoustic inference: %w", err)
	}
	melTensor := outputs[0].(*ort.Tensor[float32])
	defer melTensor.Destroy()

	shape := melTensor.GetShape()
	if len(shape) != 3 {
		return nil, 0, 0, fmt.Errorf("unexpected mel shape %v", shape)
	}
	mels := make([]float32, len(melTensor.GetData()))
	copy(mels, melTensor.GetData())
	return mels, int(shape[1]), int(shape[2]), nil
}

func (m *acousticModel) close() {
	if m.session != nil {
		m.session.Destroy()
	}
}

// vocoderConfig is the audio section of a vocoder's config.json.
type vocoderConfig struct {
	Audio struct {
		NumMels      int `json:"num_mels"`
		SamplingRate int `json:"sampling_rate"`
		Channels     int `json:"channels"`
		SampleBytes  int `json:"sample_bytes"`
	} `json:"audio"`
}

// vocoderModel is a HiFi-GAN session plus its audio parameters and the
// lazily computed denoiser bias.
type vocoderModel struct {
	session    *ort.DynamicAdvancedSession
	numMels    int
	sampleRate int

	biasOnce sync.Once
	bias     []float64
}

func loadVocoderModel(dir string) (*vocoderModel, error) {
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("onnxruntime init: %w", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, err
	}
	var cfg vocoderConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("vocoder config: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		filepath.Join(dir, "generator.onnx"),
		[]string{"mel"},
		[]string{"output"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("vocoder model %s: %w", dir, err)
	}

	return &vocoderModel{
		session:    session,
		numMels:    cfg.Audio.NumMels,
		sampleRate: cfg.Audio.SamplingRate,
	}, nil
}

// infer runs the vocoder over a flat [1, numMels, frames] mel tensor.
func (v *vocoderModel) infer(mels []float32, numMels, frames int) ([]float32, error) {
	melTensor, err := ort.NewTensor(ort.NewShape(1, int64(numMels), int64(frames)), mels)
	if err != nil {
		return nil, err
	}
	defer melTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := v.session.Run([]ort.Value{melTensor}, outputs); err != nil {
		return nil, fmt.Errorf("vocoder inference: %w", err)
	}
	audioTensor := outputs[0].(*ort.Tensor[float32])
	defer audioTensor.Destroy()

	audio := make([]float32, len(audioTensor.GetData()))
	copy(audio, audioTensor.GetData())
	return audio, nil
}

// denoiserBias runs the vocoder once over a zero mel input and caches
// the resulting hum spectrum.
func (v *vocoderModel) denoiserBias() []float64 {
	v.biasOnce.Do(func() {
		zeros := make([]float32, v.numMels*biasFrames)
		audio, err := v.infer(zeros, v.numMels, biasFrames)
		if err != nil {
			return
		}
		v.bias = biasFromAudio(audio)
	})
	return v.bias
}

func (v *vocoderModel) close() {
	if v.session != nil {
		v.session.Destroy()
	}
}
