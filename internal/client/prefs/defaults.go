package prefs

import "github.com/atinyakov/ourstory/internal/models"

// DefaultPlaylist returns a fresh copy of the built-in playlist.
func DefaultPlaylist() []models.SongEntry {
	return []models.SongEntry{
		{URL: "https://www.youtube.com/watch?v=JWLWczFtCag", Title: "Bizim Şarkımız"},
	}
}

func DefaultReasons() []string {
	return []string{
		"Gülüşünle dünyamı aydınlatman",
		"Her sabah seninle uyanma hayali",
		"Beni olduğum gibi sevmen",
		"Zor zamanlarımda yanımda olman",
		"Birlikte kurduğumuz hayaller",
		"Sesini duyduğumda hissettiğim mutluluk",
	}
}

func DefaultBucketList() []models.BucketItem {
	return []models.BucketItem{
		{ID: 1, Text: "Kapadokya'da balon turu yapmak"},
		{ID: 2, Text: "Birlikte yemek kursuna gitmek"},
		{ID: 3, Text: "Kuzey Işıklarını izlemek"},
		{ID: 4, Text: "Kendi evimizi dekore etmek"},
		{ID: 5, Text: "Paris'te Eyfel Kulesi önünde fotoğraf çekilmek"},
		{ID: 6, Text: "Bir barınaktan köpek sahiplenmek"},
	}
}

func DefaultTimeCapsule() models.TimeCapsule {
	return models.TimeCapsule{
		UnlockDate: "2024-12-31",
		MessageForHer: "Sevgilim,\n\n" +
			"Bu mektubu okuyorsan, birlikte bir yılı daha geride bırakmışız demektir. \n" +
			"Umarım şu an yan yanayızdır ve bu satırları gülümseyerek okuyoruzdur.\n" +
			"Seni o gün ne kadar seviyorsam, bugün daha çok seviyorum.\n\n" +
			"Sonsuza dek seninle...",
		MessageForHim: "Canım,\n\n" +
			"Seninle geçen her gün benim için bir hediye.\n" +
			"Gelecekteki bize not: Umarım hala birbirinize böyle aşkla bakıyorsunuzdur.\n" +
			"Seni çok seviyorum.\n\n" +
			"Daima senin...",
	}
}

// DefaultBundle returns the complete built-in bundle.
func DefaultBundle() models.Bundle {
	return models.Bundle{
		Playlist:    DefaultPlaylist(),
		Reasons:     DefaultReasons(),
		BucketList:  DefaultBucketList(),
		TimeCapsule: DefaultTimeCapsule(),
	}
}
