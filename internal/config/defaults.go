package config

const (
	defaultDataDir               = "data"
	defaultDatabaseName          = "creators.db"
	defaultAvatarsDirName        = "avatars"
	defaultYTAvatarsDirName      = "yt_avatars"
	defaultProfilesCSV           = "ideal_creator_profiles.csv"
	defaultApifyBaseURL          = "https://api.apify.com"
	defaultApifyPollInterval     = 5
	defaultApifyRunTimeout       = 1800
	defaultApifyMaxRetries       = 3
	defaultHashtagActor          = "apify/instagram-hashtag-scraper"
	defaultProfileActor          = "apify/instagram-profile-scraper"
	defaultHashtagResultsLimit   = 200
	defaultProfileBatchSize      = 50
	defaultProfileConcurrency    = 3
	defaultChannelActor          = "streamers/youtube-channel-scraper"
	defaultResultsPerQuery       = 20
	defaultMinSubscribers        = 10000
	defaultMaxSubscribers        = 500000
	defaultMaxChannels           = 300
	defaultChannelBatchSize      = 15
	defaultChannelConcurrency    = 3
	defaultLLMBaseURL            = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel              = "gpt-4o-mini"
	defaultLLMReferer            = "https://github.com/creatorscope/creatorscope"
	defaultLLMTitle              = "creatorscope"
	defaultLLMTimeoutSeconds     = 120
	defaultLLMTemperature        = 0.3
	defaultAnalysisBatchSize     = 10
	defaultBioMaxLength          = 300
	defaultAvatarConcurrency     = 10
	defaultAvatarTimeoutSeconds  = 30
	defaultServerBind            = "127.0.0.1:3000"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultInstagramHashtag      = "higgsfield"
	maxAnalysisBatchSize         = 100
	maxRunnerConcurrency         = 64
	maxYouTubeResultsPerQuery    = 200
	maxYouTubeChannelsConfigured = 10000
)

// defaultSearchQueries seeds channel discovery: editing workflows, UGC ads,
// AI video tools, cinematic breakdowns, creator business and brand mentions.
var defaultSearchQueries = []string{
	"video editing workflow tutorial",
	"how I edit my videos premiere pro",
	"after effects workflow tutorial",
	"davinci resolve editing workflow",
	"my video editing process",
	"how to edit youtube videos faster",
	"color grading workflow tutorial",
	"UGC ad creative tools",
	"ai ugc video maker",
	"how to make ugc ads",
	"ugc creator workflow",
	"performance creative video ads",
	"tiktok ad creative process",
	"ai video generation tools 2025",
	"best ai video tools comparison",
	"ai filmmaking tools review",
	"kling ai video tutorial",
	"ai video editing software",
	"runway ml tutorial",
	"pika ai video",
	"sora ai video examples",
	"ai b-roll generator",
	"ai video for marketing",
	"ai tools for content creators 2025",
	"ai video production workflow",
	"best ai tools for video creators",
	"ai video editor comparison",
	"top ai tools for youtubers",
	"ai tools review for filmmakers",
	"ai image to video tools ranked",
	"cinematic video breakdown tutorial",
	"recreating viral ads breakdown",
	"how this ad was made breakdown",
	"commercial filmmaking breakdown",
	"film technique analysis youtube",
	"viral video editing techniques",
	"recreating famous movie shots",
	"content creator video tools",
	"course creator video production",
	"youtube automation tools",
	"creator economy tools 2025",
	"how to sell digital products video",
	"online course video production",
	"how to make reels for business",
	"short form video editing tips",
	"vertical video editing workflow",
	"motion graphics tutorial beginner",
	"vfx breakdown youtube",
	"after effects templates tutorial",
	"higgsfield ai",
	"higgsfield ai video",
	"seedance ai video",
	"cinema studio ai",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			ProfilesCSV: defaultProfilesCSV,
		},
		Apify: Apify{
			BaseURL:             defaultApifyBaseURL,
			PollIntervalSeconds: defaultApifyPollInterval,
			RunTimeoutSeconds:   defaultApifyRunTimeout,
			MaxRetries:          defaultApifyMaxRetries,
		},
		Instagram: Instagram{
			HashtagActor:       defaultHashtagActor,
			ProfileActor:       defaultProfileActor,
			Hashtags:           []string{defaultInstagramHashtag},
			ResultsLimit:       defaultHashtagResultsLimit,
			ProfileBatchSize:   defaultProfileBatchSize,
			ProfileConcurrency: defaultProfileConcurrency,
		},
		YouTube: YouTube{
			ChannelActor:       defaultChannelActor,
			SearchQueries:      append([]string(nil), defaultSearchQueries...),
			ResultsPerQuery:    defaultResultsPerQuery,
			MinSubscribers:     defaultMinSubscribers,
			MaxSubscribers:     defaultMaxSubscribers,
			MaxChannels:        defaultMaxChannels,
			ChannelBatchSize:   defaultChannelBatchSize,
			ChannelConcurrency: defaultChannelConcurrency,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			Temperature:    defaultLLMTemperature,
		},
		Analysis: Analysis{
			BatchSize:    defaultAnalysisBatchSize,
			BioMaxLength: defaultBioMaxLength,
		},
		Avatars: Avatars{
			Concurrency:    defaultAvatarConcurrency,
			TimeoutSeconds: defaultAvatarTimeoutSeconds,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   true,
		},
	}
}
