package conf

type Bootstrap struct {
	Server *Server
	Motor  *Motor
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

// Motor 分析引擎配置，结构与 pkg/config 对齐
type Motor struct {
	Llm         *LLM         `json:"llm"`
	Youtube     *YouTube     `json:"youtube"`
	Transcribe  *Transcribe  `json:"transcribe"`
	Output      *Output      `json:"output"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Db          *DB          `json:"db"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type YouTube struct {
	ApiKey              string `json:"api_key"`
	MaxSearchResults    int32  `json:"max_search_results"`
	MaxCommentsPerVideo int32  `json:"max_comments_per_video"`
	RegionCode          string `json:"region_code"`
	Timeout             int32  `json:"timeout"`
}

type Transcribe struct {
	YtdlpPath        string   `json:"ytdlp_path"`
	WhisperPath      string   `json:"whisper_path"`
	WhisperModel     string   `json:"whisper_model"`
	WorkDir          string   `json:"work_dir"`
	CaptionLanguages []string `json:"caption_languages"`
	VideoTimeout     int32    `json:"video_timeout"`
}

type Output struct {
	Dir      string `json:"dir"`
	FontPath string `json:"font_path"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps     int32 `json:"qps"`
	Rpm     int32 `json:"rpm"`
	Workers int32 `json:"workers"`
}

type DB struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
