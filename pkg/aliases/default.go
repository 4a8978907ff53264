package aliases

// defaults lists import identifiers whose distribution name differs from the
// identifier, or that are commonly mistaken for one. Identity entries are kept
// so the table documents which names have been checked.
var defaults = map[string]string{
	"PIL":                  "Pillow",
	"cv2":                  "opencv-python",
	"pd":                   "pandas",
	"np":                   "numpy",
	"plt":                  "matplotlib.pyplot",
	"sns":                  "seaborn",
	"sklearn":              "scikit-learn",
	"tf":                   "tensorflow",
	"torch":                "torch",
	"tfds":                 "tensorflow-datasets",
	"sp":                   "scipy",
	"skimage":              "scikit-image",
	"yaml":                 "pyyaml",
	"h5py":                 "h5py",
	"mpl":                  "matplotlib",
	"mpld3":                "mpld3",
	"sqlite3":              "sqlite3",
	"urllib":               "urllib3",
	"BeautifulSoup":        "beautifulsoup4",
	"Crypto":               "pycryptodome",
	"Image":                "Pillow",
	"tkinter":              "tkinter",
	"sh":                   "sh",
	"requests":             "requests",
	"flask":                "Flask",
	"django":               "Django",
	"bs4":                  "beautifulsoup4",
	"jinja2":               "Jinja2",
	"pyodbc":               "pyodbc",
	"sqlalchemy":           "SQLAlchemy",
	"pytest":               "pytest",
	"moto":                 "moto",
	"botocore":             "botocore",
	"boto3":                "boto3",
	"click":                "Click",
	"paramiko":             "paramiko",
	"cryptography":         "cryptography",
	"PyQt5":                "PyQt5",
	"PySide2":              "PySide2",
	"dash":                 "dash",
	"dash_core_components": "dash",
	"dash_html_components": "dash",
	"plotly":               "plotly",
	"flask_sqlalchemy":     "Flask-SQLAlchemy",
	"psycopg2":             "psycopg2-binary",
	"flask_migrate":        "Flask-Migrate",
	"wtforms":              "WTForms",
	"flask_wtf":            "Flask-WTF",
	"bcrypt":               "bcrypt",
	"flask_bcrypt":         "Flask-Bcrypt",
	"pymongo":              "pymongo",
	"pika":                 "pika",
	"redis":                "redis",
	"pytz":                 "pytz",
	"dateutil":             "python-dateutil",
	"sqlparse":             "sqlparse",
	"mysql":                "mysql-connector-python",
	"mysqlclient":          "mysqlclient",
	"gunicorn":             "gunicorn",
	"celery":               "celery",
	"openpyxl":             "openpyxl",
	"xlrd":                 "xlrd",
	"lxml":                 "lxml",
	"jsonschema":           "jsonschema",
	"pygame":               "pygame",
	"tweepy":               "tweepy",
	"discord":              "discord.py",
	"telegram":             "python-telegram-bot",
	"cx_Oracle":            "cx_Oracle",
	"zmq":                  "pyzmq",
	"watchdog":             "watchdog",
	"pyserial":             "pyserial",
	"serial":               "pyserial",
	"bokeh":                "bokeh",
	"fastapi":              "fastapi",
	"uvicorn":              "uvicorn",
	"aiohttp":              "aiohttp",
	"openai":               "openai",
	"dotenv":               "python-dotenv",
	"jwt":                  "PyJWT",
	"magic":                "python-magic",
	"docx":                 "python-docx",
	"pptx":                 "python-pptx",
	"fitz":                 "PyMuPDF",
	"Levenshtein":          "python-Levenshtein",
	"OpenSSL":              "pyOpenSSL",
	"google":               "protobuf",
	"attr":                 "attrs",
	"usb":                  "pyusb",
	"win32api":             "pywin32",
	"win32com":             "pywin32",
	"pkg_resources":        "setuptools",
}

// Default returns the built-in alias table.
func Default() Table {
	return New(defaults)
}
