package main

import (
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/bootstrap"
	"agentconsole/internal/domain"
	"agentconsole/internal/usecase"
)

var (
	imageFilters = []runtime.FileFilter{{DisplayName: "Images", Pattern: "*.png;*.jpg;*.jpeg;*.gif;*.webp"}}
	audioFilters = []runtime.FileFilter{{DisplayName: "Audio", Pattern: "*.mp3;*.wav;*.m4a;*.ogg;*.webm"}}
	csvFilters   = []runtime.FileFilter{{DisplayName: "CSV", Pattern: "*.csv"}}
	docFilters   = []runtime.FileFilter{{DisplayName: "Documents", Pattern: "*.pdf;*.doc;*.docx;*.txt;*.png;*.jpg;*.jpeg;*.gif"}}
)

// Math

func (a *App) SendMath(text string) ([]usecase.ChatMessage, error) {
	return with(a, func(s *bootstrap.Services) ([]usecase.ChatMessage, error) {
		return s.Math.Send(a.ctx, text)
	})
}

func (a *App) ComputeMath(query string) ([]usecase.ChatMessage, error) {
	return with(a, func(s *bootstrap.Services) ([]usecase.ChatMessage, error) {
		return s.Math.Compute(a.ctx, query)
	})
}

// Web search chat and direct search

func (a *App) SendSearchChat(text string) ([]usecase.ChatMessage, error) {
	return with(a, func(s *bootstrap.Services) ([]usecase.ChatMessage, error) {
		return s.WebChat.Send(a.ctx, text)
	})
}

func (a *App) SetSearchChatEngine(engine string) error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.WebChat.SetSearchEngine(engine)
	})
	return err
}

func (a *App) Search(query string, engine string, maxResults int) (usecase.SearchResult, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SearchResult, error) {
		return s.Search.Search(a.ctx, query, engine, maxResults)
	})
}

// Smart chat

func (a *App) GetSmartChat() (usecase.SmartChatView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SmartChatView, error) {
		return s.SmartChat.View(), nil
	})
}

func (a *App) SendSmartChat(text string) (usecase.SmartChatView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SmartChatView, error) {
		return s.SmartChat.Send(a.ctx, text)
	})
}

func (a *App) ChooseSmartChatImages() (usecase.SmartChatView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SmartChatView, error) {
		files, err := a.pickFiles("Attach images", imageFilters)
		if err != nil {
			return s.SmartChat.View(), err
		}
		return s.SmartChat.AddImages(files)
	})
}

func (a *App) RemoveSmartChatImage(id string) (usecase.SmartChatView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SmartChatView, error) {
		return s.SmartChat.RemoveImage(id), nil
	})
}

func (a *App) SetSmartChatEngine(engine string) error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.SmartChat.SetSearchEngine(engine)
	})
	return err
}

func (a *App) SpeakSmartChat(text string) (usecase.SpokenAudio, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SpokenAudio, error) {
		return s.SmartChat.Speak(a.ctx, text)
	})
}

func (a *App) StopSmartChatSpeech() error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.SmartChat.StopSpeaking()
	})
	return err
}

// Data analysis

func (a *App) ChooseDataset() (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		file, ok, err := a.pickFile("Choose a CSV file", csvFilters)
		if err != nil || !ok {
			return usecase.DataView{}, err
		}
		return s.Data.Upload(a.ctx, file)
	})
}

func (a *App) CreateChart(spec usecase.ChartSpec) (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.CreateChart(a.ctx, spec)
	})
}

func (a *App) AIAnalyzeData(prompt string) (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.AIAnalyze(a.ctx, prompt)
	})
}

func (a *App) AnalyzeColumn(column string) (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.AnalyzeColumn(a.ctx, column)
	})
}

func (a *App) DataSummary() (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.Summary(a.ctx)
	})
}

func (a *App) DataInfo() (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.Info(a.ctx)
	})
}

func (a *App) ListCharts() (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.Charts(a.ctx)
	})
}

func (a *App) ClearData() (usecase.DataView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.DataView, error) {
		return s.Data.Clear(a.ctx)
	})
}

// Vision

func (a *App) ChooseVisionImage() (usecase.VisionView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VisionView, error) {
		file, ok, err := a.pickFile("Choose an image", imageFilters)
		if err != nil || !ok {
			return usecase.VisionView{}, err
		}
		return s.Vision.UploadImage(a.ctx, file)
	})
}

func (a *App) AnalyzeImage(action string, question string) (usecase.VisionView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VisionView, error) {
		return s.Vision.Analyze(a.ctx, action, question)
	})
}

// Speech to text

func (a *App) StartSpeechRecording() error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.Speech.StartRecording(a.ctx)
	})
	return err
}

func (a *App) StopSpeechRecording() (usecase.SpeechView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SpeechView, error) {
		return s.Speech.StopRecording(a.ctx)
	})
}

func (a *App) ChooseSpeechAudio() (usecase.SpeechView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SpeechView, error) {
		file, ok, err := a.pickFile("Choose an audio file", audioFilters)
		if err != nil || !ok {
			return usecase.SpeechView{}, err
		}
		return s.Speech.SelectFile(file)
	})
}

func (a *App) TranscribeSpeech(opts usecase.SpeechOptions) (usecase.SpeechView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SpeechView, error) {
		return s.Speech.Transcribe(a.ctx, opts)
	})
}

// Whisper ASR

func (a *App) StartASRRecording() error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.ASR.StartRecording(a.ctx)
	})
	return err
}

func (a *App) StopASRRecording() (usecase.ASRView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.ASRView, error) {
		return s.ASR.StopRecording(a.ctx)
	})
}

func (a *App) ChooseASRAudio() (usecase.ASRView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.ASRView, error) {
		file, ok, err := a.pickFile("Choose an audio file", audioFilters)
		if err != nil || !ok {
			return usecase.ASRView{}, err
		}
		return s.ASR.SelectFile(file)
	})
}

func (a *App) TranscribeASR(opts usecase.ASROptions) (usecase.ASRView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.ASRView, error) {
		return s.ASR.Transcribe(a.ctx, opts)
	})
}

// Image and video generation

func (a *App) GenerateImage(prompt string, width int, height int) (usecase.GeneratedImage, error) {
	return with(a, func(s *bootstrap.Services) (usecase.GeneratedImage, error) {
		return s.Images.Generate(a.ctx, prompt, width, height)
	})
}

func (a *App) GetVideo() (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		return s.Video.View(), nil
	})
}

func (a *App) ChooseReferenceImages() (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		files, err := a.pickFiles("Choose reference images", imageFilters)
		if err != nil {
			return s.Video.View(), err
		}
		return s.Video.AddReferenceImages(a.ctx, files)
	})
}

func (a *App) RemoveReferenceImage(id string) (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		return s.Video.RemoveReferenceImage(id), nil
	})
}

func (a *App) TextToVideo(prompt string, maxWait int) (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		return s.Video.TextToVideo(a.ctx, prompt, maxWait)
	})
}

func (a *App) PromptToImageToVideo(prompt string, maxWait int) (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		return s.Video.PromptToImageToVideo(a.ctx, prompt, maxWait)
	})
}

func (a *App) ReferenceImagesToVideo(prompt string, maxWait int) (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		return s.Video.ReferenceImagesToVideo(a.ctx, prompt, maxWait)
	})
}

func (a *App) ImageToVideo(referenceID string, prompt string, maxWait int) (usecase.VideoView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.VideoView, error) {
		return s.Video.ImageToVideo(a.ctx, referenceID, prompt, maxWait)
	})
}

// LLM and slides

func (a *App) ChatLLM(message string, settings usecase.LLMSettings) (usecase.LLMView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LLMView, error) {
		return s.LLM.Chat(a.ctx, message, settings)
	})
}

func (a *App) CreateLLMSlides(topic string, numSlides int, settings usecase.LLMSettings) (usecase.LLMView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LLMView, error) {
		return s.LLM.CreateSlides(a.ctx, topic, numSlides, settings)
	})
}

func (a *App) DownloadLLMSlides() (usecase.LLMView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LLMView, error) {
		dir, err := a.pickDirectory()
		if err != nil {
			return usecase.LLMView{}, err
		}
		return s.LLM.Download(a.ctx, dir)
	})
}

func (a *App) GetSlides() (usecase.SlidesView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SlidesView, error) {
		return s.Slides.View(), nil
	})
}

func (a *App) ChooseSlideDocuments() (usecase.SlidesView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SlidesView, error) {
		files, err := a.pickFiles("Choose source documents", docFilters)
		if err != nil {
			return s.Slides.View(), err
		}
		return s.Slides.AddDocuments(files)
	})
}

func (a *App) RemoveSlideDocument(id string) (usecase.SlidesView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SlidesView, error) {
		return s.Slides.RemoveDocument(id), nil
	})
}

func (a *App) GenerateSlides(numSlides int) (usecase.SlidesView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SlidesView, error) {
		return s.Slides.Generate(a.ctx, numSlides)
	})
}

func (a *App) DownloadSlides() (usecase.SlidesView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SlidesView, error) {
		dir, err := a.pickDirectory()
		if err != nil {
			return usecase.SlidesView{}, err
		}
		return s.Slides.Download(a.ctx, dir)
	})
}

// Summarization and translation

func (a *App) Summarize(text string, maxLength int, minLength int) (apiclient.SummarizeResponse, error) {
	return with(a, func(s *bootstrap.Services) (apiclient.SummarizeResponse, error) {
		return s.Summary.Summarize(a.ctx, text, maxLength, minLength)
	})
}

func (a *App) TranslationLanguages() ([]usecase.Language, error) {
	return with(a, func(s *bootstrap.Services) ([]usecase.Language, error) {
		return s.Translation.Languages(a.ctx)
	})
}

func (a *App) Translate(text string, source string, target string) (usecase.Translation, error) {
	return with(a, func(s *bootstrap.Services) (usecase.Translation, error) {
		return s.Translation.Translate(a.ctx, text, source, target)
	})
}

func (a *App) CopyTranslation() error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.Translation.Copy(a.ctx)
	})
	return err
}

func (a *App) SpeakTranslation() (usecase.SpokenAudio, error) {
	return with(a, func(s *bootstrap.Services) (usecase.SpokenAudio, error) {
		return s.Translation.Speak(a.ctx)
	})
}

// LaTeX OCR

func (a *App) LatexHealth() (usecase.LatexView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LatexView, error) {
		return s.Latex.CheckHealth(a.ctx)
	})
}

func (a *App) StartLatexService() (usecase.LatexView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LatexView, error) {
		return s.Latex.StartService(a.ctx)
	})
}

func (a *App) StopLatexService() (usecase.LatexView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LatexView, error) {
		return s.Latex.StopService(a.ctx)
	})
}

func (a *App) ChooseLatexImage() (usecase.LatexView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LatexView, error) {
		file, ok, err := a.pickFile("Choose a formula image", imageFilters)
		if err != nil || !ok {
			return usecase.LatexView{}, err
		}
		return s.Latex.Upload(a.ctx, file)
	})
}

func (a *App) ConvertLatex() (usecase.LatexView, error) {
	return with(a, func(s *bootstrap.Services) (usecase.LatexView, error) {
		return s.Latex.Convert(a.ctx)
	})
}

func (a *App) CopyLatex() error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.Latex.Copy(a.ctx)
	})
	return err
}

// Dictation

func (a *App) DictationAvailable() bool {
	return a.services != nil && a.services.Dictation.Available()
}

func (a *App) StartDictation(language string) error {
	_, err := with(a, func(s *bootstrap.Services) (struct{}, error) {
		return struct{}{}, s.Dictation.Start(a.ctx, language)
	})
	return err
}

func (a *App) StopDictation() (domain.TranscriptOutcome, error) {
	return with(a, func(s *bootstrap.Services) (domain.TranscriptOutcome, error) {
		return s.Dictation.Stop(a.ctx)
	})
}

// pickFile returns ok=false when the dialog was cancelled.
func (a *App) pickFile(title string, filters []runtime.FileFilter) (apiclient.File, bool, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{Title: title, Filters: filters})
	if err != nil || path == "" {
		return apiclient.File{}, false, err
	}
	file, err := apiclient.ReadFile(path)
	if err != nil {
		return apiclient.File{}, false, err
	}
	return file, true, nil
}

func (a *App) pickFiles(title string, filters []runtime.FileFilter) ([]apiclient.File, error) {
	paths, err := runtime.OpenMultipleFilesDialog(a.ctx, runtime.OpenDialogOptions{Title: title, Filters: filters})
	if err != nil {
		return nil, err
	}
	return readFiles(paths)
}

func (a *App) pickDirectory() (string, error) {
	return runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{Title: "Save presentation to"})
}

func readFiles(paths []string) ([]apiclient.File, error) {
	files := make([]apiclient.File, 0, len(paths))
	for _, path := range paths {
		file, err := apiclient.ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
