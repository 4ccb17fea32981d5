package config

type WorkerKeyStruct struct {
	WarmQuizCacheQueue string
}

var WorkerKey = &WorkerKeyStruct{
	WarmQuizCacheQueue: "warm_quiz_cache_queue",
}
