package language

// translations of trafficking search terms, keyed by english term then
// language code. entries are what sellers actually type, not formal names.
var builtinDictionary = map[string]map[string][]string{
	"ivory": {
		"es": {"marfil"},
		"fr": {"ivoire"},
		"pt": {"marfim"},
		"de": {"elfenbein"},
		"zh": {"象牙", "牙雕"},
		"vi": {"ngà voi"},
		"th": {"งาช้าง"},
		"id": {"gading"},
		"sw": {"pembe za ndovu"},
	},
	"rhino horn": {
		"es": {"cuerno de rinoceronte"},
		"fr": {"corne de rhinocéros"},
		"pt": {"chifre de rinoceronte"},
		"de": {"nashorn horn"},
		"zh": {"犀牛角", "犀角"},
		"vi": {"sừng tê giác"},
		"th": {"นอแรด"},
		"id": {"cula badak"},
		"sw": {"pembe ya kifaru"},
	},
	"pangolin": {
		"es": {"pangolín"},
		"fr": {"pangolin"},
		"pt": {"pangolim"},
		"de": {"schuppentier"},
		"zh": {"穿山甲"},
		"vi": {"tê tê"},
		"th": {"ตัวนิ่ม", "ลิ่น"},
		"id": {"trenggiling"},
		"sw": {"kakakuona"},
	},
	"pangolin scales": {
		"es": {"escamas de pangolín"},
		"fr": {"écailles de pangolin"},
		"pt": {"escamas de pangolim"},
		"zh": {"穿山甲鳞片", "甲片"},
		"vi": {"vảy tê tê"},
		"id": {"sisik trenggiling"},
	},
	"tiger bone": {
		"es": {"hueso de tigre"},
		"fr": {"os de tigre"},
		"pt": {"osso de tigre"},
		"zh": {"虎骨"},
		"vi": {"cao hổ", "xương hổ"},
		"th": {"กระดูกเสือ"},
		"id": {"tulang harimau"},
	},
	"tiger skin": {
		"es": {"piel de tigre"},
		"fr": {"peau de tigre"},
		"pt": {"pele de tigre"},
		"zh": {"虎皮"},
		"vi": {"da hổ"},
		"id": {"kulit harimau"},
	},
	"bear bile": {
		"es": {"bilis de oso"},
		"fr": {"bile d'ours"},
		"zh": {"熊胆"},
		"vi": {"mật gấu"},
		"th": {"ดีหมี"},
		"id": {"empedu beruang"},
	},
	"turtle shell": {
		"es": {"carey", "caparazón de tortuga"},
		"fr": {"écaille de tortue"},
		"pt": {"casco de tartaruga"},
		"zh": {"玳瑁"},
		"vi": {"đồi mồi"},
		"id": {"sisik penyu"},
	},
	"shark fin": {
		"es": {"aleta de tiburón"},
		"fr": {"aileron de requin"},
		"pt": {"barbatana de tubarão"},
		"zh": {"鱼翅"},
		"vi": {"vi cá mập"},
		"id": {"sirip hiu"},
	},
	"helmeted hornbill": {
		"zh": {"鹤顶红"},
		"id": {"gading enggang", "rangkong gading"},
	},
	"live parrot": {
		"es": {"loro vivo", "guacamaya"},
		"pt": {"papagaio", "arara"},
		"fr": {"perroquet vivant"},
		"id": {"burung kakatua"},
	},
	"slow loris": {
		"zh": {"懒猴"},
		"vi": {"cu li"},
		"th": {"ลิงลม"},
		"id": {"kukang"},
	},
}
