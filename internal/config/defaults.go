package config

const (
	defaultWorkspaceDir = "~/.local/share/reelforge/workspace"
	defaultAssetsDir    = "~/.local/share/reelforge/assets"
	defaultOutputDir    = "~/.local/share/reelforge/final"
	defaultLogDir       = "~/.local/share/reelforge/logs"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultWidth         = 1080
	defaultHeight        = 1920
	defaultFPS           = 30
	defaultMusicVolume   = 0.22
	defaultTailSeconds   = 2.5
	defaultWordsPerEvent = 1
	defaultRenderTimeout = 900

	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p/w780"
	defaultTMDBLanguage = "en-US"

	defaultPexelsBaseURL = "https://api.pexels.com/videos"
	defaultPexelsTimeout = 60

	defaultTTSBaseURL = "https://api.deepinfra.com/v1/openai"
	defaultTTSModel   = "hexgrad/Kokoro-82M"
	defaultTTSTimeout = 120

	defaultStoryBaseURL    = "https://api.groq.com/openai/v1"
	defaultStoryModel      = "llama-3.3-70b-versatile"
	defaultStorySceneCount = 5
	defaultStoryTimeout    = 120

	defaultWhisperCommand = "whisper"
	defaultWhisperModel   = "base"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			AssetsDir:    defaultAssetsDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
		},
		Render: Render{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Width:         defaultWidth,
			Height:        defaultHeight,
			FPS:           defaultFPS,
			MusicVolume:   defaultMusicVolume,
			TailSeconds:   defaultTailSeconds,
			WordsPerEvent: defaultWordsPerEvent,
			TimeoutSec:    defaultRenderTimeout,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			ImageURL: defaultTMDBImageURL,
			Language: defaultTMDBLanguage,
		},
		Pexels: Pexels{
			BaseURL:    defaultPexelsBaseURL,
			TimeoutSec: defaultPexelsTimeout,
		},
		TTS: TTS{
			BaseURL:    defaultTTSBaseURL,
			Model:      defaultTTSModel,
			TimeoutSec: defaultTTSTimeout,
		},
		Story: Story{
			BaseURL:    defaultStoryBaseURL,
			Model:      defaultStoryModel,
			SceneCount: defaultStorySceneCount,
			TimeoutSec: defaultStoryTimeout,
		},
		Whisper: Whisper{
			Command: defaultWhisperCommand,
			Model:   defaultWhisperModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
